package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
)

// RefundOrder returns the full amount of a PAID order. On gateway failure the
// order stays PAID and the call can be retried with the same refund
// reference.
func (uc *DefaultPaymentUsecase) RefundOrder(ctx context.Context, orderNo string) (*domain.OrderWithTransactions, error) {
	order, err := uc.OrderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPaid {
		uc.recordRefund("invalid_state", nil)
		return nil, domain.InvalidStatef("order %s is %s, refund requires PAID", order.OrderNo, order.Status)
	}

	refundRef := RefundReference(order.OrderNo)

	started := time.Now()
	result, err := uc.Gateway.Refund(ctx, order.OrderNo, refundRef, order.Amount)
	uc.observeGatewayCall("refund", started, err)
	if err != nil {
		slog.Error("refund rejected by gateway", "order_no", order.OrderNo, "refund_ref", refundRef, "error", err)
		uc.recordRefund("gateway_error", nil)
		return nil, asGatewayErr("refund", err)
	}

	transactionNo := result.RefundID
	if transactionNo == "" {
		transactionNo = refundRef
	}

	unlock, err := uc.lockOrder(ctx, order.OrderNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	refunded := *order
	refunded.Status = domain.StatusRefunded

	_, err = uc.OrderRepo.ProcessTransition(ctx, &domain.OrderTransition{
		OrderNo: order.OrderNo,
		From:    domain.StatusPaid,
		To:      domain.StatusRefunded,
		Transaction: &domain.Transaction{
			TransactionNo: transactionNo,
			Amount:        order.Amount,
			Type:          domain.TransactionRefund,
			Status:        domain.TransactionSuccess,
			PaymentTime:   uc.now(),
		},
		Event: uc.newEvent(domain.EventOrderRefunded, &refunded),
	})
	if err != nil {
		slog.Error("failed to mark order refunded", "order_no", order.OrderNo, "refund_id", result.RefundID, "error", err)
		uc.recordRefund("error", nil)
		return nil, err
	}

	uc.recordRefund("ok", order)
	slog.Info("order refunded", "order_no", order.OrderNo, "refund_id", result.RefundID)

	return uc.GetOrder(ctx, order.OrderNo)
}
