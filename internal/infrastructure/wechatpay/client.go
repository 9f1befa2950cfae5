package wechatpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/wechat"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	tradeTypeJSAPI = "JSAPI"
	codeSuccess    = "SUCCESS"
)

// Client adapts the gopay WeChat Pay v2 client to domain.PaymentGateway.
type Client struct {
	cfg     config.WechatPay
	api     *wechat.Client
	hasCert bool

	now   func() time.Time
	nonce func() string
}

// NewClient builds a client from cfg. When cert_path and key_path are set the
// merchant certificate is loaded for the refund endpoint, which requires
// mutual TLS.
func NewClient(cfg config.WechatPay) (*Client, error) {
	switch cfg.SignType {
	case "":
		cfg.SignType = wechat.SignType_MD5
	case wechat.SignType_MD5, wechat.SignType_HMAC_SHA256:
	default:
		return nil, fmt.Errorf("unsupported sign type %q", cfg.SignType)
	}

	api := wechat.NewClient(cfg.AppID, cfg.MchID, cfg.APIKey, true)
	api.DebugSwitch = gopay.DebugOff
	if cfg.BaseURL != "" {
		api.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"
	}

	c := &Client{
		cfg: cfg,
		api: api,
		now: time.Now,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}

	if cfg.CertPath != "" && cfg.KeyPath != "" {
		if err := api.AddCertPemFilePath(cfg.CertPath, cfg.KeyPath); err != nil {
			return nil, fmt.Errorf("load merchant certificate: %w", err)
		}
		c.hasCert = true
	}

	return c, nil
}

// CreatePaymentIntent places a JSAPI unified order and returns the signed
// parameters the payer's client passes to the payment sheet.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderNo, description string, amount decimal.Decimal, payerIdentity string) (*domain.PaymentParameters, error) {
	fee, err := ToFen(amount)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "amount is not representable in fen", err)
	}

	bm := make(gopay.BodyMap)
	bm.Set("nonce_str", c.nonce()).
		Set("body", description).
		Set("out_trade_no", orderNo).
		Set("total_fee", fee).
		Set("spbill_create_ip", c.cfg.ClientIP).
		Set("notify_url", c.cfg.NotifyURL).
		Set("trade_type", tradeTypeJSAPI).
		Set("openid", payerIdentity).
		Set("sign_type", c.cfg.SignType)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	rsp, err := c.api.UnifiedOrder(ctx, bm)
	slog.Debug("wechat pay call", "api", "unifiedorder", "duration", time.Since(started))
	if err != nil {
		return nil, transportErr("unified order", err)
	}
	if rsp.ReturnCode != codeSuccess {
		return nil, domain.NewError(domain.KindGateway, fmt.Sprintf("%s: %s", rsp.ReturnCode, rsp.ReturnMsg), nil)
	}
	if ok, err := wechat.VerifySign(c.cfg.APIKey, c.cfg.SignType, rsp); err != nil || !ok {
		return nil, domain.NewError(domain.KindGateway, "unified order response signature mismatch", err)
	}
	if rsp.ResultCode != codeSuccess {
		return nil, domain.NewError(domain.KindGateway, fmt.Sprintf("%s: %s", rsp.ErrCode, rsp.ErrCodeDes), nil)
	}
	if rsp.PrepayId == "" {
		return nil, domain.NewError(domain.KindGateway, "unified order returned no prepay_id", nil)
	}

	timeStamp := strconv.FormatInt(c.now().Unix(), 10)
	nonceStr := c.nonce()
	pkg := "prepay_id=" + rsp.PrepayId

	return &domain.PaymentParameters{
		AppID:     c.cfg.AppID,
		TimeStamp: timeStamp,
		NonceStr:  nonceStr,
		Package:   pkg,
		SignType:  c.cfg.SignType,
		PaySign:   wechat.GetJsapiPaySign(c.cfg.AppID, nonceStr, pkg, c.cfg.SignType, timeStamp, c.cfg.APIKey),
		PrepayID:  rsp.PrepayId,
	}, nil
}

// Refund returns the full amount of orderNo. The provider deduplicates on
// refundRef, so repeating the call with the same reference is safe.
func (c *Client) Refund(ctx context.Context, orderNo, refundRef string, amount decimal.Decimal) (*domain.RefundResult, error) {
	if !c.hasCert {
		return nil, domain.NewError(domain.KindGateway, "refund requires a merchant certificate", nil)
	}
	fee, err := ToFen(amount)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "amount is not representable in fen", err)
	}

	bm := make(gopay.BodyMap)
	bm.Set("nonce_str", c.nonce()).
		Set("out_trade_no", orderNo).
		Set("out_refund_no", refundRef).
		Set("total_fee", fee).
		Set("refund_fee", fee).
		Set("sign_type", c.cfg.SignType)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	_, resBm, err := c.api.Refund(ctx, bm)
	slog.Debug("wechat pay call", "api", "refund", "duration", time.Since(started))
	if err != nil {
		return nil, transportErr("refund", err)
	}
	if resBm.GetString("return_code") != codeSuccess {
		return nil, domain.NewError(domain.KindGateway,
			fmt.Sprintf("%s: %s", resBm.GetString("return_code"), resBm.GetString("return_msg")), nil)
	}
	if ok, err := wechat.VerifySign(c.cfg.APIKey, c.cfg.SignType, resBm); err != nil || !ok {
		return nil, domain.NewError(domain.KindGateway, "refund response signature mismatch", err)
	}
	if resBm.GetString("result_code") != codeSuccess {
		return nil, domain.NewError(domain.KindGateway,
			fmt.Sprintf("%s: %s", resBm.GetString("err_code"), resBm.GetString("err_code_des")), nil)
	}

	refundID := resBm.GetString("refund_id")
	if refundID == "" {
		return nil, domain.NewError(domain.KindGateway, "refund returned no refund_id", nil)
	}

	refunded := amount
	if n, err := strconv.ParseInt(resBm.GetString("refund_fee"), 10, 64); err == nil {
		refunded = FromFen(n)
	}

	return &domain.RefundResult{
		RefundID:  refundID,
		RefundRef: refundRef,
		Amount:    refunded,
	}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func transportErr(api string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindGateway, api+" timed out", err)
	}
	return domain.NewError(domain.KindGateway, api+" request failed", err)
}

// ToFen converts a yuan amount to integer fen, rejecting sub-fen precision.
func ToFen(amount decimal.Decimal) (int64, error) {
	fen := amount.Shift(2)
	if !fen.Equal(fen.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two fractional digits", amount)
	}
	return fen.IntPart(), nil
}

func FromFen(fen int64) decimal.Decimal {
	return decimal.New(fen, -2)
}
