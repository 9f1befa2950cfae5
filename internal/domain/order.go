package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRefunded  OrderStatus = "REFUNDED"
)

const PaymentMethodWechat = "wechat"

// orderTransitions lists every legal status edge. CANCELLED is reachable from
// PENDING only; nothing ever returns to PENDING.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusRefunded},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID            int64
	OrderNo       string
	UserID        int64
	ProductID     int64
	ProductName   string
	Amount        decimal.Decimal
	Status        OrderStatus
	PaymentMethod string
	TransactionID string
	Remark        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderWithTransactions is an order joined with its settlement events,
// oldest first.
type OrderWithTransactions struct {
	Order        *Order
	Transactions []*Transaction
}

type OrderPage struct {
	Orders   []*Order
	Total    int64
	Page     int
	PageSize int
}
