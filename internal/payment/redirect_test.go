package payment

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyMax = 100000

func query(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func TestParseRedirect_ExtraDataWinsOverOrderCode(t *testing.T) {
	q := query(t, "code=00&id=abc&cancel=false&status=PAID&orderCode=987654&extraData=rentalOrderId%3D42")

	r := ParseRedirect(q, legacyMax)

	assert.Equal(t, ProviderPayOS, r.Provider)
	assert.Equal(t, OutcomeSuccess, r.Outcome)
	assert.Equal(t, uint64(42), r.OrderID)
	assert.Equal(t, int64(987654), r.GatewayOrderCode)
	assert.Equal(t, "https://app.example/orders/42?payment=success", r.Target("https://app.example", r.OrderID))
}

func TestParseRedirect_ExtraDataBase64(t *testing.T) {
	q := url.Values{}
	q.Set("partnerCode", "MOMO")
	q.Set("orderId", "RO42-1704078000000000000")
	q.Set("resultCode", "0")
	q.Set("extraData", EncodeExtraData(42))
	q.Set("rentalOrderId", "7")

	r := ParseRedirect(q, legacyMax)

	assert.Equal(t, ProviderMoMo, r.Provider)
	assert.Equal(t, OutcomeSuccess, r.Outcome)
	assert.Equal(t, uint64(42), r.OrderID)
	assert.Equal(t, "RO42-1704078000000000000", r.GatewayOrderID)
}

func TestParseRedirect_OrderCodeNeverUsedAsOrderID(t *testing.T) {
	r := ParseRedirect(query(t, "code=00&status=PAID&orderCode=987654"), legacyMax)

	assert.Equal(t, OutcomeSuccess, r.Outcome)
	assert.Zero(t, r.OrderID)
	assert.Equal(t, int64(987654), r.GatewayOrderCode)
}

func TestParseRedirect_DirectOrderID(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		limit int64
		want  uint64
	}{
		{"rentalOrderId", "resultCode=0&rentalOrderId=15", legacyMax, 15},
		{"small orderId", "resultCode=0&orderId=15", legacyMax, 15},
		{"orderId at threshold", "resultCode=0&orderId=100000", legacyMax, 0},
		{"orderId above threshold", "resultCode=0&orderId=2500000", legacyMax, 0},
		{"threshold disabled", "resultCode=0&orderId=15", 0, 0},
		{"non numeric orderId", "resultCode=0&orderId=RO15-1", legacyMax, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseRedirect(query(t, tt.raw), tt.limit)
			assert.Equal(t, tt.want, r.OrderID)
		})
	}
}

func TestParseRedirect_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Outcome
	}{
		{"momo success", "partnerCode=MOMO&resultCode=0", OutcomeSuccess},
		{"momo failure", "partnerCode=MOMO&resultCode=1006", OutcomeFailed},
		{"momo without result", "partnerCode=MOMO", OutcomeAnomalous},
		{"payos success", "code=00&status=PAID", OutcomeSuccess},
		{"payos cancel flag", "code=00&cancel=true&status=CANCELLED&orderCode=123456", OutcomeCancelled},
		{"payos cancel flag only", "cancel=true", OutcomeCancelled},
		{"cancelled status lower case", "code=00&status=canceled", OutcomeCancelled},
		{"payos error code", "code=01&status=PENDING", OutcomeFailed},
		{"nothing recognised", "foo=bar", OutcomeAnomalous},
		{"empty", "", OutcomeAnomalous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRedirect(query(t, tt.raw), legacyMax).Outcome)
		})
	}
}

func TestRedirectTarget(t *testing.T) {
	const front = "https://app.example/"

	cancelled := Redirect{Outcome: OutcomeCancelled}
	assert.Equal(t, "https://app.example/checkout?orderId=42", cancelled.Target(front, 42))
	assert.Equal(t, "https://app.example/", cancelled.Target(front, 0))

	failed := Redirect{Outcome: OutcomeFailed}
	assert.Equal(t, "https://app.example/checkout?orderId=9", failed.Target(front, 9))

	success := Redirect{Outcome: OutcomeSuccess}
	assert.Equal(t, "https://app.example/orders?payment=success", success.Target(front, 0))

	anomalous := Redirect{}
	assert.Equal(t, "https://app.example/?warning=unexpected_payment_return", anomalous.Target(front, 42))
}

func TestCancelledRedirectNeverTargetsSuccess(t *testing.T) {
	r := ParseRedirect(query(t, "code=00&cancel=true&status=CANCELLED&extraData=rentalOrderId%3D42"), legacyMax)

	require.Equal(t, OutcomeCancelled, r.Outcome)
	assert.Equal(t, "/checkout?orderId=42", r.Target("", r.OrderID))
}
