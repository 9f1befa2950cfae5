package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-payment-service/internal/usecase/dto/order"
)

// HandlePaymentNotification applies a provider payment notification and
// reports how the provider should be answered. It never fails: every outcome,
// including internal faults, becomes an ack. A failure ack makes the provider
// redeliver later.
func (uc *DefaultPaymentUsecase) HandlePaymentNotification(ctx context.Context, raw []byte) (ack orderdto.NotificationAck) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling payment notification", "panic", r)
			ack = failAck(orderdto.OutcomeError, "internal error")
		}
		uc.recordNotification(ack.Outcome)
	}()

	return uc.handleNotification(ctx, raw)
}

func (uc *DefaultPaymentUsecase) handleNotification(ctx context.Context, raw []byte) orderdto.NotificationAck {
	n, err := uc.Verifier.Verify(raw)
	if err != nil {
		slog.Warn("payment notification rejected", "error", err)
		return failAck(orderdto.OutcomeVerificationFailed, "verification failed")
	}

	log := slog.With("order_no", n.OrderNo, "transaction_id", n.TransactionID)

	if _, err := uc.OrderRepo.GetOrderByOrderNo(ctx, n.OrderNo); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("payment notification for unknown order")
			return failAck(orderdto.OutcomeNotFound, "order not found")
		}
		log.Error("failed to load order for notification", "error", err)
		return failAck(orderdto.OutcomeError, "internal error")
	}

	unlock, err := uc.lockOrder(ctx, n.OrderNo)
	if err != nil {
		log.Error("failed to lock order for notification", "error", err)
		return failAck(orderdto.OutcomeError, "internal error")
	}
	defer unlock()

	order, err := uc.OrderRepo.GetOrderByOrderNo(ctx, n.OrderNo)
	if err != nil {
		log.Error("failed to reload order for notification", "error", err)
		return failAck(orderdto.OutcomeError, "internal error")
	}

	if err := uc.Verifier.CheckAmount(n, order); err != nil {
		log.Error("payment notification amount mismatch", "paid", n.Amount.StringFixed(2), "expected", order.Amount.StringFixed(2))
		return failAck(orderdto.OutcomeAmountMismatch, "amount mismatch")
	}

	if alreadyApplied(order, n) {
		log.Info("duplicate payment notification ignored", "status", order.Status)
		return successAck(orderdto.OutcomeDuplicate)
	}

	if order.Status != domain.StatusPending {
		log.Error("payment notification for order in unexpected state", "status", order.Status, "stored_transaction_id", order.TransactionID)
		return failAck(orderdto.OutcomeInvalidState, "order is "+string(order.Status))
	}

	paid := *order
	paid.Status = domain.StatusPaid
	paid.TransactionID = n.TransactionID

	_, err = uc.OrderRepo.ProcessTransition(ctx, &domain.OrderTransition{
		OrderNo:       order.OrderNo,
		From:          domain.StatusPending,
		To:            domain.StatusPaid,
		TransactionID: n.TransactionID,
		Transaction: &domain.Transaction{
			TransactionNo: n.TransactionID,
			Amount:        n.Amount,
			Type:          domain.TransactionPayment,
			Status:        domain.TransactionSuccess,
			PaymentTime:   n.PaidAt,
			CallbackData:  n.Raw,
		},
		Event: uc.newEvent(domain.EventOrderPaid, &paid),
	})
	if err != nil {
		return uc.resolveTransitionConflict(ctx, log, n, err)
	}

	log.Info("order paid", "amount", n.Amount.StringFixed(2))
	return successAck(orderdto.OutcomePaid)
}

// resolveTransitionConflict handles a transition that lost a race with
// another writer. If the winner applied this same payment the notification is
// a duplicate; anything else is reported back as a failure.
func (uc *DefaultPaymentUsecase) resolveTransitionConflict(ctx context.Context, log *slog.Logger, n *domain.PaymentNotification, err error) orderdto.NotificationAck {
	if !errors.Is(err, domain.ErrInvalidState) && !errors.Is(err, domain.ErrDuplicateNotification) {
		log.Error("failed to mark order paid", "error", err)
		return failAck(orderdto.OutcomeError, "internal error")
	}

	current, getErr := uc.OrderRepo.GetOrderByOrderNo(ctx, n.OrderNo)
	if getErr == nil && alreadyApplied(current, n) {
		log.Info("duplicate payment notification ignored", "status", current.Status)
		return successAck(orderdto.OutcomeDuplicate)
	}

	log.Error("payment notification conflicts with stored state", "error", err)
	return failAck(orderdto.OutcomeInvalidState, "order state conflict")
}

// alreadyApplied reports whether the order already carries the payment
// described by n.
func alreadyApplied(order *domain.Order, n *domain.PaymentNotification) bool {
	if order.TransactionID != n.TransactionID {
		return false
	}
	return order.Status == domain.StatusPaid || order.Status == domain.StatusRefunded
}

func successAck(outcome string) orderdto.NotificationAck {
	return orderdto.NotificationAck{Success: true, Message: "OK", Outcome: outcome}
}

func failAck(outcome, message string) orderdto.NotificationAck {
	return orderdto.NotificationAck{Success: false, Message: message, Outcome: outcome}
}
