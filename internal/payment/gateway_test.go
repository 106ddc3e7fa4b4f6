package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayOrderIDRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	ref := GatewayOrderID(42, now)
	assert.Equal(t, "RO42-1704103200000000000", ref)
	assert.Equal(t, uint64(42), OrderIDFromGatewayOrderID(ref))

	assert.Zero(t, OrderIDFromGatewayOrderID("INV-123"))
	assert.Zero(t, OrderIDFromGatewayOrderID("42"))
}

func TestOrderCodeAboveInternalIDs(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	code := OrderCode(7, now)
	assert.Greater(t, code, int64(legacyMax))
	assert.Less(t, code, int64(1)<<53)
	assert.NotEqual(t, code, OrderCode(8, now))
}

func TestOrderCodeUniquePerPaymentWithinSecond(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	seen := map[int64]uint64{}
	for _, id := range []uint64{1, 1001, 2001, 1_000_001, 999} {
		code := OrderCode(id, now)
		prev, dup := seen[code]
		assert.False(t, dup, "payments %d and %d share code %d", prev, id, code)
		seen[code] = id
	}
	assert.Less(t, OrderCode(1_000_000_000, now), int64(1)<<53)
}

func TestMoMoIPNVerification(t *testing.T) {
	cfg := MoMoConfig{PartnerCode: "MOMO", AccessKey: "access", SecretKey: "secret"}
	m := NewMoMo(cfg)

	ipn := MoMoIPN{
		PartnerCode:  "MOMO",
		OrderID:      "RO42-1704103200000000000",
		RequestID:    "req-1",
		Amount:       300000,
		OrderInfo:    "Deposit order 42",
		OrderType:    "momo_wallet",
		TransID:      4088878653,
		ResultCode:   0,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1704103260000,
		ExtraData:    EncodeExtraData(42),
	}
	ipn.Signature = MoMoIPNSignature(cfg, ipn)

	n, err := m.VerifyIPN(ipn)
	require.NoError(t, err)
	assert.True(t, n.Paid)
	assert.False(t, n.Failed)
	assert.Equal(t, uint64(42), n.OrderID)
	assert.Equal(t, "4088878653", n.TransID)

	ipn.Amount = 1
	_, err = m.VerifyIPN(ipn)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMoMoIPNPendingIsNotFailure(t *testing.T) {
	cfg := MoMoConfig{PartnerCode: "MOMO", AccessKey: "a", SecretKey: "s"}
	ipn := MoMoIPN{PartnerCode: "MOMO", OrderID: "RO1-1", ResultCode: 7000}
	ipn.Signature = MoMoIPNSignature(cfg, ipn)

	n, err := NewMoMo(cfg).VerifyIPN(ipn)
	require.NoError(t, err)
	assert.False(t, n.Paid)
	assert.False(t, n.Failed)
	assert.Equal(t, uint64(1), n.OrderID)
}

func TestMoMoCreateSignatureIsStable(t *testing.T) {
	cfg := MoMoConfig{PartnerCode: "MOMO", AccessKey: "F8BBA842ECF85", SecretKey: "K951B6PE1waDMi640xX08PD3vg6EkVlz"}
	req := momoCreateRequest{
		PartnerCode: "MOMO",
		RequestID:   "MOMO1540456472575",
		Amount:      50000,
		OrderID:     "MOMO1540456472575",
		OrderInfo:   "pay with MoMo",
		RedirectURL: "https://momo.vn/return",
		IpnURL:      "https://callback.url/notify",
		RequestType: momoRequestType,
	}

	sig := momoCreateSignature(cfg, req)
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, momoCreateSignature(cfg, req))

	req.Amount++
	assert.NotEqual(t, sig, momoCreateSignature(cfg, req))
}

func TestPayOSWebhookVerification(t *testing.T) {
	p := NewPayOS(PayOSConfig{ChecksumKey: "checksum"})
	data := json.RawMessage(`{"orderCode":1704103200007,"amount":300000,"description":"RO42 deposit","reference":"FT123","paymentLinkId":"abc","code":"00","desc":"success","counterAccountName":null}`)

	sig, err := PayOSDataSignature("checksum", data)
	require.NoError(t, err)

	n, err := p.VerifyWebhook(PayOSWebhook{Code: "00", Success: true, Data: data, Signature: sig})
	require.NoError(t, err)
	assert.True(t, n.Paid)
	assert.Equal(t, int64(1704103200007), n.GatewayOrderCode)
	assert.Equal(t, int64(300000), n.Amount)
	assert.Zero(t, n.OrderID)

	_, err = p.VerifyWebhook(PayOSWebhook{Code: "00", Data: data, Signature: "deadbeef"})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPayOSDataSignatureSortsKeys(t *testing.T) {
	a, err := PayOSDataSignature("k", json.RawMessage(`{"b":"2","a":1,"c":null}`))
	require.NoError(t, err)

	// same content, different key order
	b, err := PayOSDataSignature("k", json.RawMessage(`{"c":null,"a":1,"b":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, hmacSHA256Hex("k", "a=1&b=2&c="), a)
}

func TestMidtransNotification(t *testing.T) {
	m := NewMidtrans(MidtransConfig{ServerKey: "server-key"})

	n := MidtransNotification{
		TransactionStatus: "settlement",
		TransactionID:     "tx-1",
		OrderID:           "RO42-1704103200000000000",
		StatusCode:        "200",
		GrossAmount:       "300000.00",
	}
	n.SignatureKey = MidtransSignature("server-key", n)

	got, err := m.VerifyNotification(n)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, uint64(42), got.OrderID)
	assert.Equal(t, int64(300000), got.Amount)

	n.TransactionStatus = "expire"
	n.SignatureKey = MidtransSignature("server-key", n)
	got, err = m.VerifyNotification(n)
	require.NoError(t, err)
	assert.True(t, got.Failed)

	n.SignatureKey = "bad"
	_, err = m.VerifyNotification(n)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
