package mappers

import (
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:            model.ID,
		OrderID:       model.OrderID,
		TransactionNo: model.TransactionNo,
		Amount:        model.Amount,
		Type:          model.Type,
		Status:        model.Status,
		PaymentTime:   model.PaymentTime,
		CallbackData:  model.CallbackData,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:            tx.ID,
		OrderID:       tx.OrderID,
		TransactionNo: tx.TransactionNo,
		Amount:        tx.Amount,
		Type:          tx.Type,
		Status:        tx.Status,
		PaymentTime:   tx.PaymentTime,
		CallbackData:  tx.CallbackData,
		CreatedAt:     tx.CreatedAt,
	}
}

func ToDomainOutboxRecord(model *models.OutboxEventModel) *domain.OutboxRecord {
	return &domain.OutboxRecord{
		ID:        model.ID,
		EventID:   model.EventID,
		Topic:     model.Topic,
		Key:       model.Key,
		Payload:   model.Payload,
		CreatedAt: model.CreatedAt,
		SentAt:    model.SentAt,
	}
}
