package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoMoCreatePayment(t *testing.T) {
	cfg := MoMoConfig{PartnerCode: "MOMO", AccessKey: "a", SecretKey: "s"}

	var got momoCreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, momoCreatePath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(momoCreateResponse{OrderID: got.OrderID, ResultCode: 0, PayURL: "https://pay.momo/x"})
	}))
	defer srv.Close()

	cfg.Endpoint = srv.URL
	m := NewMoMo(cfg)
	m.now = func() time.Time { return time.Unix(0, 5) }
	m.reqID = func() string { return "req-1" }

	link, err := m.CreatePayment(context.Background(), Request{OrderID: 42, PaymentID: 3, Amount: 300000, Description: "Deposit", ReturnURL: "https://api/return", NotifyURL: "https://api/ipn"})
	require.NoError(t, err)

	assert.Equal(t, "RO42-5", link.GatewayOrderID)
	assert.Equal(t, "https://pay.momo/x", link.PayURL)
	assert.Equal(t, uint64(42), orderIDFromExtraData(got.ExtraData))
	assert.Equal(t, momoCreateSignature(cfg, momoCreateRequest{
		PartnerCode: got.PartnerCode,
		RequestID:   got.RequestID,
		Amount:      got.Amount,
		OrderID:     got.OrderID,
		OrderInfo:   got.OrderInfo,
		RedirectURL: got.RedirectURL,
		IpnURL:      got.IpnURL,
		RequestType: got.RequestType,
		ExtraData:   got.ExtraData,
	}), got.Signature)
}

func TestMoMoCreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 22, Message: "amount out of range"})
	}))
	defer srv.Close()

	m := NewMoMo(MoMoConfig{Endpoint: srv.URL})
	_, err := m.CreatePayment(context.Background(), Request{OrderID: 1, Amount: 1})
	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestPayOSCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client", r.Header.Get("x-client-id"))
		assert.Equal(t, "key", r.Header.Get("x-api-key"))

		var body payosCreateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, payosCreateSignature("sum", body), body.Signature)
		assert.LessOrEqual(t, utf8.RuneCountInString(body.Description), payosMaxDescription)
		assert.True(t, utf8.ValidString(body.Description))

		_, _ = w.Write([]byte(`{"code":"00","desc":"success","data":{"checkoutUrl":"https://pay.payos.vn/web/abc","orderCode":1}}`))
	}))
	defer srv.Close()

	p := NewPayOS(PayOSConfig{Endpoint: srv.URL, ClientID: "client", APIKey: "key", ChecksumKey: "sum"})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	link, err := p.CreatePayment(context.Background(), Request{OrderID: 42, PaymentID: 3, Amount: 300000, Description: "Đặt cọc thuê xe cho đơn hàng số 42"})
	require.NoError(t, err)
	assert.Equal(t, OrderCode(3, now), link.GatewayOrderCode)
	assert.Equal(t, "https://pay.payos.vn/web/abc", link.PayURL)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Dat coc", truncateRunes("Dat coc", 25))
	assert.Equal(t, "Đặt cọc", truncateRunes("Đặt cọc thuê xe", 7))
	assert.True(t, utf8.ValidString(truncateRunes("Thanh toán đơn", 9)))
}
