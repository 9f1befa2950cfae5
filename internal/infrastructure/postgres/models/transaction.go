package models

import (
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionModel struct {
	ID            int64                    `gorm:"primaryKey;autoIncrement"`
	OrderID       int64                    `gorm:"not null;index"`
	TransactionNo string                   `gorm:"size:64;not null;uniqueIndex"`
	Amount        decimal.Decimal          `gorm:"type:numeric(12,2);not null"`
	Type          domain.TransactionType   `gorm:"size:16;not null"`
	Status        domain.TransactionStatus `gorm:"size:16;not null"`
	PaymentTime   time.Time
	CallbackData  string `gorm:"type:text"`
	CreatedAt     time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}
