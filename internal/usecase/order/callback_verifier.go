package usecase

import (
	"errors"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
)

// CallbackVerifier decides whether a notification can be trusted before any
// of its fields are acted on.
type CallbackVerifier struct {
	Gateway domain.PaymentGateway
}

func NewCallbackVerifier(gateway domain.PaymentGateway) *CallbackVerifier {
	return &CallbackVerifier{Gateway: gateway}
}

// Verify checks the provider signature over raw and extracts the payment
// fields. Every failure is a VerificationError.
func (v *CallbackVerifier) Verify(raw []byte) (*domain.PaymentNotification, error) {
	if len(raw) == 0 {
		return nil, domain.Verificationf("empty notification body")
	}

	n, err := v.Gateway.VerifyAndParseNotification(raw)
	if err != nil {
		if errors.Is(err, domain.ErrVerification) {
			return nil, err
		}
		return nil, domain.NewError(domain.KindVerification, "notification rejected", err)
	}

	switch {
	case n.OrderNo == "":
		return nil, domain.Verificationf("notification carries no order number")
	case n.TransactionID == "":
		return nil, domain.Verificationf("notification for %s carries no transaction id", n.OrderNo)
	case !n.Amount.IsPositive():
		return nil, domain.Verificationf("notification for %s has non-positive amount %s", n.OrderNo, n.Amount)
	}
	return n, nil
}

// CheckAmount rejects a notification whose paid amount differs from the
// stored order amount.
func (v *CallbackVerifier) CheckAmount(n *domain.PaymentNotification, order *domain.Order) error {
	if !n.Amount.Equal(order.Amount) {
		return domain.Verificationf("paid amount %s does not match order %s amount %s",
			n.Amount.StringFixed(2), order.OrderNo, order.Amount.StringFixed(2))
	}
	return nil
}
