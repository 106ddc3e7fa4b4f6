package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	payosCreatePath = "/v2/payment-requests"
	// PayOS truncates longer descriptions.
	payosMaxDescription = 25
)

type PayOSConfig struct {
	Endpoint    string
	ClientID    string
	APIKey      string
	ChecksumKey string
}

type PayOS struct {
	cfg PayOSConfig
	hc  *http.Client
	now func() time.Time
}

func NewPayOS(cfg PayOSConfig) *PayOS {
	return &PayOS{cfg: cfg, hc: newHTTPClient(), now: time.Now}
}

func (p *PayOS) Name() Provider { return ProviderPayOS }

type payosCreateRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	BuyerName   string `json:"buyerName,omitempty"`
	BuyerEmail  string `json:"buyerEmail,omitempty"`
	BuyerPhone  string `json:"buyerPhone,omitempty"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	ExpiredAt   int64  `json:"expiredAt,omitempty"`
	Signature   string `json:"signature"`
}

type payosCreateResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data *struct {
		CheckoutURL   string `json:"checkoutUrl"`
		PaymentLinkID string `json:"paymentLinkId"`
		OrderCode     int64  `json:"orderCode"`
	} `json:"data"`
}

// payosCreateSignature signs the five fields PayOS checks on create, in
// alphabetical order.
func payosCreateSignature(checksumKey string, r payosCreateRequest) string {
	raw := "amount=" + strconv.FormatInt(r.Amount, 10) +
		"&cancelUrl=" + r.CancelURL +
		"&description=" + r.Description +
		"&orderCode=" + strconv.FormatInt(r.OrderCode, 10) +
		"&returnUrl=" + r.ReturnURL
	return hmacSHA256Hex(checksumKey, raw)
}

// truncateRunes keeps at most n characters without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (p *PayOS) CreatePayment(ctx context.Context, req Request) (*Link, error) {
	now := p.now()
	desc := truncateRunes(req.Description, payosMaxDescription)

	body := payosCreateRequest{
		OrderCode:   OrderCode(req.PaymentID, now),
		Amount:      req.Amount,
		Description: desc,
		BuyerName:   req.BuyerName,
		BuyerEmail:  req.BuyerEmail,
		BuyerPhone:  req.BuyerPhone,
		// cancel and return share one URL; cancel=true tells them apart
		CancelURL: req.ReturnURL,
		ReturnURL: req.ReturnURL,
		ExpiredAt: now.Add(15 * time.Minute).Unix(),
	}
	body.Signature = payosCreateSignature(p.cfg.ChecksumKey, body)

	headers := map[string]string{
		"x-client-id": p.cfg.ClientID,
		"x-api-key":   p.cfg.APIKey,
	}
	var resp payosCreateResponse
	if err := postJSON(ctx, p.hc, p.cfg.Endpoint+payosCreatePath, headers, body, &resp); err != nil {
		return nil, fmt.Errorf("payos create: %w", err)
	}
	if resp.Code != payosSuccessCode || resp.Data == nil {
		return nil, fmt.Errorf("%w: payos %s %s", ErrGatewayRejected, resp.Code, resp.Desc)
	}

	return &Link{GatewayOrderCode: body.OrderCode, PayURL: resp.Data.CheckoutURL}, nil
}

// PayOSWebhook is the body PayOS posts to the registered webhook URL.
type PayOSWebhook struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type payosWebhookData struct {
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	Reference     string `json:"reference"`
	PaymentLinkID string `json:"paymentLinkId"`
	Code          string `json:"code"`
}

// PayOSDataSignature signs an arbitrary data object: keys sorted, values
// stringified, null as empty string.
func PayOSDataSignature(checksumKey string, data json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+payosValue(fields[k]))
	}
	return hmacSHA256Hex(checksumKey, strings.Join(parts, "&")), nil
}

func payosValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if t == "null" || t == "undefined" {
			return ""
		}
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func (p *PayOS) VerifyWebhook(w PayOSWebhook) (Notification, error) {
	expected, err := PayOSDataSignature(p.cfg.ChecksumKey, w.Data)
	if err != nil || !equalSignature(expected, w.Signature) {
		return Notification{}, ErrInvalidSignature
	}

	var d payosWebhookData
	if err := json.Unmarshal(w.Data, &d); err != nil {
		return Notification{}, fmt.Errorf("payos webhook data: %w", err)
	}

	paid := w.Code == payosSuccessCode && (d.Code == "" || d.Code == payosSuccessCode)
	return Notification{
		Provider:         ProviderPayOS,
		GatewayOrderCode: d.OrderCode,
		TransID:          d.Reference,
		Amount:           d.Amount,
		Paid:             paid,
		Failed:           !paid,
	}, nil
}
