package domain

import "context"

// OrderTransition describes one atomic status change. The repository applies
// it only if the stored status still equals From; otherwise it returns an
// InvalidState error and writes nothing.
type OrderTransition struct {
	OrderNo       string
	From          OrderStatus
	To            OrderStatus
	TransactionID string
	Transaction   *Transaction
	Event         *OrderEvent
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order, event *OrderEvent) (int64, error)
	GetOrderByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	GetOrdersByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*Order, int64, error)
	ProcessTransition(ctx context.Context, transition *OrderTransition) (*Order, error)
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) (int64, error)
	GetTransactionsByOrderID(ctx context.Context, orderID int64) ([]*Transaction, error)
	GetTransactionByNo(ctx context.Context, transactionNo string) (*Transaction, error)
}
