package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

type OrderEventType string

const (
	EventOrderCreated  OrderEventType = "order.created"
	EventOrderPaid     OrderEventType = "order.paid"
	EventOrderRefunded OrderEventType = "order.refunded"
)

// OrderEvent is written to the outbox in the same database transaction as the
// state change it describes.
type OrderEvent struct {
	EventID       string          `json:"event_id"`
	Type          OrderEventType  `json:"type"`
	OrderNo       string          `json:"order_no"`
	UserID        int64           `json:"user_id"`
	Status        OrderStatus     `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type OutboxRecord struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time
}

type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]*OutboxRecord, error)
	MarkSent(ctx context.Context, ids []int64) error
}
