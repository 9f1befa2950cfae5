package wechatpay

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/wechat"
	"github.com/shopspring/decimal"
)

const testAPIKey = "192006250b4c09247ec02edce69f6a2d"

func testConfig(baseURL string) config.WechatPay {
	return config.WechatPay{
		AppID:     "wx0000000000000001",
		MchID:     "1900000001",
		APIKey:    testAPIKey,
		SignType:  wechat.SignType_MD5,
		NotifyURL: "https://pay.example.com/api/v1/payments/callback",
		BaseURL:   baseURL,
		ClientIP:  "127.0.0.1",
		Timeout:   2 * time.Second,
	}
}

// xmlBody renders bm the way the provider does: a flat <xml> document with
// CDATA values.
func xmlBody(bm gopay.BodyMap) []byte {
	keys := make([]string, 0, len(bm))
	for k := range bm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<xml>")
	for _, k := range keys {
		b.WriteString("<" + k + "><![CDATA[" + bm.GetString(k) + "]]></" + k + ">")
	}
	b.WriteString("</xml>")
	return []byte(b.String())
}

func signed(bm gopay.BodyMap) gopay.BodyMap {
	bm.Set("sign", wechat.GetReleaseSign(testAPIKey, wechat.SignType_MD5, bm))
	return bm
}

// newGateway starts a fake provider. handle receives the verified request and
// returns the business fields of the reply; the fake signs the reply.
func newGateway(t *testing.T, handle func(path string, req gopay.BodyMap) gopay.BodyMap) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := wechat.ParseNotifyToBodyMap(r)
		if err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		signType := req.GetString("sign_type")
		if ok, err := wechat.VerifySign(testAPIKey, signType, req); err != nil || !ok {
			t.Errorf("request signature invalid: %v", req)
		}

		resp := handle(r.URL.Path, req)
		if resp.GetString("return_code") == codeSuccess {
			resp.Set("appid", "wx0000000000000001").Set("mch_id", "1900000001").Set("nonce_str", "srvnonce")
			signed(resp)
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write(xmlBody(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, cfg config.WechatPay) *Client {
	t.Helper()
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	c.nonce = func() string { return "fixednonce" }
	return c
}

// writeMerchantCert stores a throwaway self-signed certificate and key as PEM
// files and returns their paths.
func writeMerchantCert(t *testing.T) (certPath, keyPath string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "1900000001"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	dir := t.TempDir()
	certPath = filepath.Join(dir, "apiclient_cert.pem")
	keyPath = filepath.Join(dir, "apiclient_key.pem")
	if err := os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return certPath, keyPath
}

func signedNotification(t *testing.T, overrides map[string]string) []byte {
	t.Helper()
	bm := make(gopay.BodyMap)
	bm.Set("return_code", "SUCCESS").
		Set("result_code", "SUCCESS").
		Set("appid", "wx0000000000000001").
		Set("mch_id", "1900000001").
		Set("nonce_str", "abc").
		Set("out_trade_no", "O1").
		Set("transaction_id", "4200000001").
		Set("total_fee", "1999").
		Set("time_end", "20240501120000")
	for k, v := range overrides {
		bm.Set(k, v)
	}
	return xmlBody(signed(bm))
}

func TestNewClientRejectsUnknownSignType(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.SignType = "RSA"
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for unsupported sign type")
	}
}

func TestToFen(t *testing.T) {
	fen, err := ToFen(decimal.RequireFromString("19.99"))
	if err != nil || fen != 1999 {
		t.Errorf("ToFen(19.99) = %d, %v", fen, err)
	}
	if _, err := ToFen(decimal.RequireFromString("0.001")); err == nil {
		t.Error("expected error for sub-fen amount")
	}
	if !FromFen(1999).Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("FromFen(1999) = %s", FromFen(1999))
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	var captured gopay.BodyMap
	srv := newGateway(t, func(path string, req gopay.BodyMap) gopay.BodyMap {
		if path != "/pay/unifiedorder" {
			t.Errorf("path = %s, want /pay/unifiedorder", path)
		}
		captured = req
		return gopay.BodyMap{"return_code": "SUCCESS", "result_code": "SUCCESS", "trade_type": "JSAPI", "prepay_id": "wx201410272009395522657a690389285100"}
	})
	c := newTestClient(t, testConfig(srv.URL))

	params, err := c.CreatePaymentIntent(context.Background(), "O1", "Annual membership", decimal.RequireFromString("19.99"), "openid-123")
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}

	if captured.GetString("total_fee") != "1999" || captured.GetString("out_trade_no") != "O1" || captured.GetString("openid") != "openid-123" {
		t.Errorf("unexpected unified order request: %v", captured)
	}
	if captured.GetString("trade_type") != tradeTypeJSAPI || captured.GetString("mch_id") != "1900000001" {
		t.Errorf("unexpected unified order request: %v", captured)
	}

	if params.Package != "prepay_id=wx201410272009395522657a690389285100" {
		t.Errorf("package = %s", params.Package)
	}
	if params.TimeStamp != "1700000000" || params.NonceStr != "fixednonce" {
		t.Errorf("unexpected params %+v", params)
	}
	check := gopay.BodyMap{
		"appId":     params.AppID,
		"timeStamp": params.TimeStamp,
		"nonceStr":  params.NonceStr,
		"package":   params.Package,
		"signType":  params.SignType,
	}
	if want := wechat.GetReleaseSign(testAPIKey, params.SignType, check); params.PaySign != want {
		t.Errorf("paySign = %s, want %s", params.PaySign, want)
	}
}

func TestCreatePaymentIntentBusinessFailure(t *testing.T) {
	srv := newGateway(t, func(string, gopay.BodyMap) gopay.BodyMap {
		return gopay.BodyMap{"return_code": "SUCCESS", "result_code": "FAIL", "err_code": "ORDERPAID", "err_code_des": "order already paid"}
	})
	c := newTestClient(t, testConfig(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), "O1", "x", decimal.RequireFromString("1.00"), "openid")
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ORDERPAID") {
		t.Errorf("error should carry provider code: %v", err)
	}
}

func TestCreatePaymentIntentReturnFailure(t *testing.T) {
	srv := newGateway(t, func(string, gopay.BodyMap) gopay.BodyMap {
		return gopay.BodyMap{"return_code": "FAIL", "return_msg": "invalid mch_id"}
	})
	c := newTestClient(t, testConfig(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), "O1", "x", decimal.RequireFromString("1.00"), "openid")
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
}

func TestCreatePaymentIntentRejectsForgedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := signed(gopay.BodyMap{"return_code": "SUCCESS", "result_code": "SUCCESS", "prepay_id": "wx1"})
		resp.Set("prepay_id", "wx-forged")
		w.Write(xmlBody(resp))
	}))
	defer srv.Close()
	c := newTestClient(t, testConfig(srv.URL))

	_, err := c.CreatePaymentIntent(context.Background(), "O1", "x", decimal.RequireFromString("1.00"), "openid")
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected GatewayError for forged response, got %v", err)
	}
}

func TestCallTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := newTestClient(t, cfg)

	_, err := c.CreatePaymentIntent(context.Background(), "O1", "x", decimal.RequireFromString("1.00"), "openid")
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected GatewayError on timeout, got %v", err)
	}
}

func TestRefund(t *testing.T) {
	srv := newGateway(t, func(path string, req gopay.BodyMap) gopay.BodyMap {
		if path != "/secapi/pay/refund" {
			t.Errorf("path = %s, want /secapi/pay/refund", path)
		}
		if req.GetString("out_refund_no") != "O1R" || req.GetString("refund_fee") != "1999" || req.GetString("total_fee") != "1999" {
			t.Errorf("unexpected refund request: %v", req)
		}
		return gopay.BodyMap{"return_code": "SUCCESS", "result_code": "SUCCESS", "refund_id": "50000001", "refund_fee": "1999"}
	})
	cfg := testConfig(srv.URL)
	cfg.CertPath, cfg.KeyPath = writeMerchantCert(t)
	c := newTestClient(t, cfg)

	res, err := c.Refund(context.Background(), "O1", "O1R", decimal.RequireFromString("19.99"))
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if res.RefundID != "50000001" || res.RefundRef != "O1R" || !res.Amount.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("unexpected refund result %+v", res)
	}
}

func TestRefundRequiresCertificate(t *testing.T) {
	c := newTestClient(t, testConfig("http://unused"))

	_, err := c.Refund(context.Background(), "O1", "O1R", decimal.RequireFromString("19.99"))
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("expected GatewayError without certificate, got %v", err)
	}
}

func TestVerifyAndParseNotification(t *testing.T) {
	c := newTestClient(t, testConfig("http://unused"))

	n, err := c.VerifyAndParseNotification(signedNotification(t, nil))
	if err != nil {
		t.Fatalf("VerifyAndParseNotification: %v", err)
	}
	if n.OrderNo != "O1" || n.TransactionID != "4200000001" {
		t.Errorf("unexpected notification %+v", n)
	}
	if !n.Amount.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("amount = %s, want 19.99", n.Amount)
	}
	wantPaid := time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC)
	if !n.PaidAt.Equal(wantPaid) {
		t.Errorf("paid at = %s, want %s", n.PaidAt, wantPaid)
	}
	if !strings.Contains(n.Raw, "4200000001") {
		t.Error("raw payload not retained")
	}
}

func TestVerifyAndParseNotificationRejects(t *testing.T) {
	c := newTestClient(t, testConfig("http://unused"))

	tampered := strings.Replace(string(signedNotification(t, nil)), "<![CDATA[1999]]>", "<![CDATA[1]]>", 1)
	cases := map[string][]byte{
		"tampered":       []byte(tampered),
		"not xml":        []byte("{\"json\":true}"),
		"result fail":    signedNotification(t, map[string]string{"result_code": "FAIL"}),
		"foreign mch":    signedNotification(t, map[string]string{"mch_id": "other"}),
		"bad total_fee":  signedNotification(t, map[string]string{"total_fee": "abc"}),
		"return failure": []byte("<xml><return_code>FAIL</return_code></xml>"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.VerifyAndParseNotification(raw)
			if !errors.Is(err, domain.ErrVerification) {
				t.Fatalf("expected VerificationError, got %v", err)
			}
		})
	}
}

func TestAck(t *testing.T) {
	ok := string(Ack(true, ""))
	if !strings.Contains(ok, "<![CDATA[SUCCESS]]>") || !strings.Contains(ok, "<![CDATA[OK]]>") {
		t.Errorf("unexpected success ack %s", ok)
	}

	fail := string(Ack(false, "amount mismatch"))
	if !strings.Contains(fail, "<![CDATA[FAIL]]>") || !strings.Contains(fail, "amount mismatch") {
		t.Errorf("unexpected failure ack %s", fail)
	}
}
