package models

import (
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID            int64              `gorm:"primaryKey;autoIncrement"`
	OrderNo       string             `gorm:"size:64;not null;uniqueIndex"`
	UserID        int64              `gorm:"not null;index:idx_orders_user_created,priority:1"`
	ProductID     int64              `gorm:"not null"`
	ProductName   string             `gorm:"size:128;not null"`
	Amount        decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Status        domain.OrderStatus `gorm:"size:16;not null;index"`
	PaymentMethod string             `gorm:"size:32"`
	TransactionID string             `gorm:"size:64"`
	Remark        string             `gorm:"size:255"`
	CreatedAt     time.Time          `gorm:"index:idx_orders_user_created,priority:2"`
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
