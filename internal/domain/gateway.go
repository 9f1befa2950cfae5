package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentParameters are handed to the payer's client untouched.
type PaymentParameters struct {
	AppID     string `json:"appId"`
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
	PrepayID  string `json:"prepayId"`
}

type RefundResult struct {
	RefundID  string
	RefundRef string
	Amount    decimal.Decimal
}

// PaymentNotification is the verified content of an asynchronous
// payment-completion message.
type PaymentNotification struct {
	OrderNo       string
	TransactionID string
	Amount        decimal.Decimal
	PaidAt        time.Time
	Raw           string
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, orderNo, description string, amount decimal.Decimal, payerIdentity string) (*PaymentParameters, error)
	Refund(ctx context.Context, orderNo, refundRef string, amount decimal.Decimal) (*RefundResult, error)
	VerifyAndParseNotification(raw []byte) (*PaymentNotification, error)
}
