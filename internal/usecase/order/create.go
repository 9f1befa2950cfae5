package usecase

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
)

const (
	maxProductNameLength = 128
	maxRemarkLength      = 255
)

func (uc *DefaultPaymentUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error) {
	if err := validateCreateOrder(input); err != nil {
		uc.recordOrderCreated("validation_error", nil)
		return nil, err
	}

	now := uc.now()
	order := &domain.Order{
		OrderNo:     uc.orderNo(),
		UserID:      input.UserID,
		ProductID:   input.ProductID,
		ProductName: strings.TrimSpace(input.ProductName),
		Amount:      input.Amount,
		Status:      domain.StatusPending,
		Remark:      input.Remark,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := uc.OrderRepo.CreateOrder(ctx, order, uc.newEvent(domain.EventOrderCreated, order)); err != nil {
		slog.Error("failed to create order", "user_id", input.UserID, "product_id", input.ProductID, "error", err)
		uc.recordOrderCreated("error", nil)
		return nil, err
	}

	uc.recordOrderCreated("ok", order)
	slog.Info("order created", "order_no", order.OrderNo, "user_id", order.UserID, "amount", order.Amount.StringFixed(2))
	return order, nil
}

func validateCreateOrder(input *orderdto.CreateOrderInput) error {
	switch {
	case input == nil:
		return domain.Validationf("empty request")
	case input.UserID <= 0:
		return domain.Validationf("userId must be positive")
	case input.ProductID <= 0:
		return domain.Validationf("productId must be positive")
	case strings.TrimSpace(input.ProductName) == "":
		return domain.Validationf("productName is required")
	case utf8.RuneCountInString(input.ProductName) > maxProductNameLength:
		return domain.Validationf("productName exceeds %d characters", maxProductNameLength)
	case utf8.RuneCountInString(input.Remark) > maxRemarkLength:
		return domain.Validationf("remark exceeds %d characters", maxRemarkLength)
	case !input.Amount.IsPositive():
		return domain.Validationf("amount must be greater than zero")
	case !input.Amount.Equal(input.Amount.Truncate(2)):
		return domain.Validationf("amount %s has more than two fractional digits", input.Amount)
	}
	return nil
}
