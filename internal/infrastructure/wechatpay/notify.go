package wechatpay

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/go-pay/gopay/wechat"
)

const timeEndLayout = "20060102150405"

// China Standard Time has no daylight saving.
var chinaStandardTime = time.FixedZone("CST", 8*60*60)

// VerifyAndParseNotification authenticates a payment-result notification over
// its raw bytes and extracts the fields the order core acts on.
func (c *Client) VerifyAndParseNotification(raw []byte) (*domain.PaymentNotification, error) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	if err != nil {
		return nil, domain.NewError(domain.KindVerification, "malformed notification", err)
	}
	p, err := wechat.ParseNotifyToBodyMap(req)
	if err != nil {
		return nil, domain.NewError(domain.KindVerification, "malformed notification", err)
	}

	if p.GetString("return_code") != codeSuccess {
		return nil, domain.Verificationf("notification return_code %s: %s", p.GetString("return_code"), p.GetString("return_msg"))
	}

	signType := p.GetString("sign_type")
	if signType == "" {
		signType = c.cfg.SignType
	}
	if ok, err := wechat.VerifySign(c.cfg.APIKey, signType, p); err != nil || !ok {
		return nil, domain.NewError(domain.KindVerification, "notification signature mismatch", err)
	}

	if p.GetString("result_code") != codeSuccess {
		return nil, domain.Verificationf("payment not successful: %s %s", p.GetString("err_code"), p.GetString("err_code_des"))
	}
	if appID := p.GetString("appid"); appID != "" && c.cfg.AppID != "" && appID != c.cfg.AppID {
		return nil, domain.Verificationf("notification for foreign appid %s", appID)
	}
	if mchID := p.GetString("mch_id"); mchID != "" && c.cfg.MchID != "" && mchID != c.cfg.MchID {
		return nil, domain.Verificationf("notification for foreign mch_id %s", mchID)
	}

	fee, err := strconv.ParseInt(strings.TrimSpace(p.GetString("total_fee")), 10, 64)
	if err != nil {
		return nil, domain.NewError(domain.KindVerification, "invalid total_fee", err)
	}

	paidAt := time.Now()
	if v := p.GetString("time_end"); v != "" {
		t, err := time.ParseInLocation(timeEndLayout, v, chinaStandardTime)
		if err != nil {
			return nil, domain.NewError(domain.KindVerification, "invalid time_end", err)
		}
		paidAt = t
	}

	return &domain.PaymentNotification{
		OrderNo:       p.GetString("out_trade_no"),
		TransactionID: p.GetString("transaction_id"),
		Amount:        FromFen(fee),
		PaidAt:        paidAt,
		Raw:           string(raw),
	}, nil
}

// Ack renders the acknowledgement body the provider expects in reply to a
// notification. Anything but SUCCESS makes it redeliver.
func Ack(success bool, message string) []byte {
	rsp := &wechat.NotifyResponse{ReturnCode: "FAIL", ReturnMsg: message}
	if success {
		rsp.ReturnCode = codeSuccess
		if message == "" {
			rsp.ReturnMsg = "OK"
		}
	}
	return []byte(rsp.ToXmlString())
}
