package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionPayment TransactionType = "PAYMENT"
	TransactionRefund  TransactionType = "REFUND"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// Transaction is one settlement event against an order. Rows are append-only.
type Transaction struct {
	ID            int64
	OrderID       int64
	TransactionNo string
	Amount        decimal.Decimal
	Type          TransactionType
	Status        TransactionStatus
	PaymentTime   time.Time
	CallbackData  string
	CreatedAt     time.Time
}
