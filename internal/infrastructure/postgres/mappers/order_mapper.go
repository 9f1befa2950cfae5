package mappers

import (
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:            model.ID,
		OrderNo:       model.OrderNo,
		UserID:        model.UserID,
		ProductID:     model.ProductID,
		ProductName:   model.ProductName,
		Amount:        model.Amount,
		Status:        model.Status,
		PaymentMethod: model.PaymentMethod,
		TransactionID: model.TransactionID,
		Remark:        model.Remark,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:            order.ID,
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		ProductID:     order.ProductID,
		ProductName:   order.ProductName,
		Amount:        order.Amount,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		TransactionID: order.TransactionID,
		Remark:        order.Remark,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
