package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB         *gorm.DB
	EventTopic string
}

func NewDefaultOrderRepository(db *gorm.DB, eventTopic string) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db, EventTopic: eventTopic}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order, event *domain.OrderEvent) (int64, error) {
	orderModel := mappers.ToGORMOrder(order)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(orderModel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewError(domain.KindInternal, fmt.Sprintf("order number %s already taken", order.OrderNo), err)
			}
			return err
		}
		if event != nil {
			return appendOutbox(tx, r.EventTopic, event)
		}
		return nil
	})
	if err != nil {
		return 0, wrapStorageErr("create order", err)
	}

	order.ID = orderModel.ID
	order.CreatedAt = orderModel.CreatedAt
	order.UpdatedAt = orderModel.UpdatedAt
	return orderModel.ID, nil
}

func (r *DefaultOrderRepository) GetOrderByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("order %s not found", orderNo)
		}
		return nil, wrapStorageErr("get order", err)
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("order #%d not found", id)
		}
		return nil, wrapStorageErr("get order", err)
	}
	return mappers.ToDomainOrder(&order), nil
}

// UpdateOrder replaces every mutable column of the row with the values in
// order. The write only applies while the stored status still equals
// order.Status; a copy read before a concurrent transition fails with
// InvalidState and the row is left untouched. Status changes go through
// ProcessTransition.
func (r *DefaultOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now()
	orderModel := mappers.ToGORMOrder(order)

	res := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Select("*").
		Omit("id", "created_at").
		Updates(orderModel)
	if res.Error != nil {
		return wrapStorageErr("update order", res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.OrderModel
		if err := r.DB.WithContext(ctx).Select("status").First(&current, "id = ?", order.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundf("order %s not found", order.OrderNo)
			}
			return wrapStorageErr("update order", err)
		}
		return domain.InvalidStatef("order %s is %s, update expected %s", order.OrderNo, current.Status, order.Status)
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrdersByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*domain.Order, int64, error) {
	var (
		orderModels []models.OrderModel
		total       int64
	)

	byUser := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.OrderModel{}).Where("user_id = ?", userID)
	}
	if err := byUser().Count(&total).Error; err != nil {
		return nil, 0, wrapStorageErr("count orders", err)
	}

	offset := (page - 1) * pageSize
	if err := byUser().
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orderModels).Error; err != nil {
		return nil, 0, wrapStorageErr("list orders", err)
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, total, nil
}

// ProcessTransition moves the order from transition.From to transition.To and
// appends the settlement row and outbox event in the same database
// transaction. The status change is a conditional update, so a concurrent
// writer that already moved the order makes this call fail with InvalidState
// and leaves nothing behind.
func (r *DefaultOrderRepository) ProcessTransition(ctx context.Context, transition *domain.OrderTransition) (*domain.Order, error) {
	if !transition.From.CanTransitionTo(transition.To) {
		return nil, domain.InvalidStatef("transition %s -> %s is not allowed", transition.From, transition.To)
	}

	var updated models.OrderModel
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes := map[string]interface{}{
			"status":     transition.To,
			"updated_at": time.Now(),
		}
		if transition.TransactionID != "" {
			changes["transaction_id"] = transition.TransactionID
		}

		res := tx.Model(&models.OrderModel{}).
			Where("order_no = ? AND status = ?", transition.OrderNo, transition.From).
			Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.OrderModel
			if err := tx.Select("status").First(&current, "order_no = ?", transition.OrderNo).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NotFoundf("order %s not found", transition.OrderNo)
				}
				return err
			}
			return domain.InvalidStatef("order %s is %s, expected %s", transition.OrderNo, current.Status, transition.From)
		}

		if err := tx.First(&updated, "order_no = ?", transition.OrderNo).Error; err != nil {
			return err
		}

		if transition.Transaction != nil {
			transition.Transaction.OrderID = updated.ID
			txModel := mappers.ToGORMTransaction(transition.Transaction)
			if err := tx.Create(txModel).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.NewError(domain.KindDuplicateNotification,
						fmt.Sprintf("transaction %s already recorded", transition.Transaction.TransactionNo), err)
				}
				return err
			}
			transition.Transaction.ID = txModel.ID
			transition.Transaction.CreatedAt = txModel.CreatedAt
		}

		if transition.Event != nil {
			return appendOutbox(tx, r.EventTopic, transition.Event)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorageErr("process transition", err)
	}

	return mappers.ToDomainOrder(&updated), nil
}

func appendOutbox(tx *gorm.DB, topic string, event *domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return tx.Create(&models.OutboxEventModel{
		EventID: event.EventID,
		Topic:   topic,
		Key:     event.OrderNo,
		Payload: payload,
	}).Error
}

// wrapStorageErr passes taxonomy errors through and marks everything else as
// an internal storage fault.
func wrapStorageErr(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewError(domain.KindInternal, op, err)
}
