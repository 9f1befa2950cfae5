package orderdto

import "github.com/shopspring/decimal"

type CreateOrderInput struct {
	UserID      int64
	ProductID   int64
	ProductName string
	Amount      decimal.Decimal
	Remark      string
}

type InitiatePaymentInput struct {
	OrderNo       string
	PayerIdentity string
	// UserID, when non-zero, must own the order.
	UserID int64
}

type ListOrdersInput struct {
	UserID   int64
	Page     int
	PageSize int
}
