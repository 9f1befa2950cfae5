package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
)

// InitiatePayment asks the gateway for payment parameters and records the
// payment method. The order stays PENDING.
func (uc *DefaultPaymentUsecase) InitiatePayment(ctx context.Context, input *orderdto.InitiatePaymentInput) (*domain.PaymentParameters, error) {
	if input == nil || strings.TrimSpace(input.OrderNo) == "" {
		return nil, domain.Validationf("orderNo is required")
	}
	if strings.TrimSpace(input.PayerIdentity) == "" {
		return nil, domain.Validationf("payerIdentity is required")
	}

	order, err := uc.OrderRepo.GetOrderByOrderNo(ctx, input.OrderNo)
	if err != nil {
		return nil, err
	}
	if input.UserID != 0 && order.UserID != input.UserID {
		return nil, domain.NotFoundf("order %s not found", input.OrderNo)
	}
	if order.Status != domain.StatusPending {
		uc.recordPaymentInitiated("invalid_state")
		return nil, domain.InvalidStatef("order %s is %s, payment requires PENDING", order.OrderNo, order.Status)
	}

	// The provider call runs outside the order lock.
	started := time.Now()
	params, err := uc.Gateway.CreatePaymentIntent(ctx, order.OrderNo, order.ProductName, order.Amount, input.PayerIdentity)
	uc.observeGatewayCall("create_payment_intent", started, err)
	if err != nil {
		slog.Error("failed to create payment intent", "order_no", order.OrderNo, "error", err)
		uc.recordPaymentInitiated("gateway_error")
		return nil, asGatewayErr("create payment intent", err)
	}

	unlock, err := uc.lockOrder(ctx, order.OrderNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := uc.OrderRepo.GetOrderByOrderNo(ctx, order.OrderNo)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.StatusPending {
		uc.recordPaymentInitiated("invalid_state")
		return nil, domain.InvalidStatef("order %s became %s during payment initiation", current.OrderNo, current.Status)
	}

	current.PaymentMethod = domain.PaymentMethodWechat
	if err := uc.OrderRepo.UpdateOrder(ctx, current); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			uc.recordPaymentInitiated("invalid_state")
		}
		slog.Error("failed to record payment method", "order_no", current.OrderNo, "error", err)
		return nil, err
	}

	uc.recordPaymentInitiated("ok")
	slog.Info("payment initiated", "order_no", current.OrderNo, "prepay_id", params.PrepayID)
	return params, nil
}
