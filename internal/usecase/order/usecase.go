package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/metrics"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
	"github.com/google/uuid"
)

type PaymentUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderNo string) (*domain.OrderWithTransactions, error)
	ListOrders(ctx context.Context, input *orderdto.ListOrdersInput) (*domain.OrderPage, error)

	InitiatePayment(ctx context.Context, input *orderdto.InitiatePaymentInput) (*domain.PaymentParameters, error)
	HandlePaymentNotification(ctx context.Context, raw []byte) orderdto.NotificationAck
	RefundOrder(ctx context.Context, orderNo string) (*domain.OrderWithTransactions, error)
}

type DefaultPaymentUsecase struct {
	OrderRepo       domain.OrderRepository
	TransactionRepo domain.TransactionRepository
	Gateway         domain.PaymentGateway
	Locker          domain.OrderLocker
	Verifier        *CallbackVerifier
	Metrics         *metrics.PaymentMetrics
	Pagination      config.Orders

	orderNo func() string
	now     func() time.Time
}

func NewDefaultPaymentUsecase(
	orderRepo domain.OrderRepository,
	transactionRepo domain.TransactionRepository,
	gateway domain.PaymentGateway,
	locker domain.OrderLocker,
	paymentMetrics *metrics.PaymentMetrics,
	pagination config.Orders,
) (*DefaultPaymentUsecase, error) {
	generator, err := NewOrderNoGenerator()
	if err != nil {
		return nil, err
	}

	return &DefaultPaymentUsecase{
		OrderRepo:       orderRepo,
		TransactionRepo: transactionRepo,
		Gateway:         gateway,
		Locker:          locker,
		Verifier:        NewCallbackVerifier(gateway),
		Metrics:         paymentMetrics,
		Pagination:      pagination,
		orderNo:         generator.Next,
		now:             time.Now,
	}, nil
}

func (uc *DefaultPaymentUsecase) newEvent(eventType domain.OrderEventType, order *domain.Order) *domain.OrderEvent {
	return &domain.OrderEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OrderNo:       order.OrderNo,
		UserID:        order.UserID,
		Status:        order.Status,
		Amount:        order.Amount,
		TransactionID: order.TransactionID,
		OccurredAt:    uc.now(),
	}
}

// lockOrder wraps lock acquisition failures into the error taxonomy.
func (uc *DefaultPaymentUsecase) lockOrder(ctx context.Context, orderNo string) (func(), error) {
	unlock, err := uc.Locker.Lock(ctx, orderNo)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "failed to lock order "+orderNo, err)
	}
	return unlock, nil
}

// asGatewayErr keeps taxonomy errors from the gateway adapter and marks
// anything else as a gateway failure.
func asGatewayErr(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewError(domain.KindGateway, op, err)
}
