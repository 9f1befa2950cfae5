package usecase

import (
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
)

// recordOrderCreated - вызывается при создании заказа
func (uc *DefaultPaymentUsecase) recordOrderCreated(result string, order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	var amount float64
	if order != nil {
		amount = order.Amount.InexactFloat64()
	}
	uc.Metrics.RecordOrderCreated(result, amount)
}

func (uc *DefaultPaymentUsecase) recordPaymentInitiated(result string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentInitiated(result)
}

func (uc *DefaultPaymentUsecase) recordNotification(outcome string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordNotification(outcome)
}

func (uc *DefaultPaymentUsecase) recordRefund(result string, order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	var amount float64
	if order != nil {
		amount = order.Amount.InexactFloat64()
	}
	uc.Metrics.RecordRefund(result, amount)
}

func (uc *DefaultPaymentUsecase) observeGatewayCall(operation string, started time.Time, err error) {
	if uc.Metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	uc.Metrics.ObserveGatewayCall(operation, result, time.Since(started).Seconds())
}
