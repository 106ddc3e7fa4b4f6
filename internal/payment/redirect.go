package payment

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Outcome is how a gateway redirect is classified. The redirect only decides
// where to send the browser; settlement comes from signed callbacks.
type Outcome int

const (
	OutcomeAnomalous Outcome = iota
	OutcomeSuccess
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "anomalous"
	}
}

const (
	momoSuccessCode  = "0"
	payosSuccessCode = "00"

	warningUnexpectedReturn = "unexpected_payment_return"
)

// Redirect is everything that can be read from a return URL without touching
// storage.
type Redirect struct {
	Provider Provider
	Outcome  Outcome

	// OrderID is set only from extraData or a trusted direct parameter.
	OrderID uint64

	GatewayOrderID   string // MoMo orderId
	GatewayOrderCode int64  // PayOS orderCode
	ResultCode       string
	Message          string
}

// ParseRedirect classifies a return query. A plain numeric orderId is taken
// as an internal order id only when it is below legacyMax; legacyMax <= 0
// turns that fallback off.
func ParseRedirect(q url.Values, legacyMax int64) Redirect {
	r := Redirect{
		Message:        firstOf(q, "message", "desc"),
		GatewayOrderID: q.Get("orderId"),
	}

	switch {
	case has(q, "resultCode", "momoOrderId", "partnerCode"):
		r.Provider = ProviderMoMo
		r.ResultCode = q.Get("resultCode")
	case has(q, "code", "orderCode", "status", "cancel"):
		r.Provider = ProviderPayOS
		r.ResultCode = q.Get("code")
	}

	if code, err := strconv.ParseInt(q.Get("orderCode"), 10, 64); err == nil && code > 0 {
		r.GatewayOrderCode = code
	}

	r.Outcome = classify(q, r)
	r.OrderID = orderIDFromQuery(q, legacyMax)
	return r
}

func classify(q url.Values, r Redirect) Outcome {
	if isTruthy(q.Get("cancel")) || isCancelledStatus(q.Get("status")) {
		return OutcomeCancelled
	}
	switch r.Provider {
	case ProviderMoMo:
		if r.ResultCode == "" {
			return OutcomeAnomalous
		}
		if r.ResultCode == momoSuccessCode {
			return OutcomeSuccess
		}
		return OutcomeFailed
	case ProviderPayOS:
		if r.ResultCode == payosSuccessCode || strings.EqualFold(q.Get("status"), "PAID") {
			return OutcomeSuccess
		}
		if r.ResultCode != "" || q.Get("status") != "" {
			return OutcomeFailed
		}
	}
	return OutcomeAnomalous
}

func orderIDFromQuery(q url.Values, legacyMax int64) uint64 {
	// 1. extraData wins over everything else
	if id := orderIDFromExtraData(q.Get("extraData")); id > 0 {
		return id
	}

	// 2. explicit parameter
	if id := parseID(q.Get("rentalOrderId")); id > 0 {
		return id
	}

	// 3. bare orderId, only when it cannot be a gateway code
	if legacyMax > 0 {
		if id := parseID(q.Get("orderId")); id > 0 && id < uint64(legacyMax) {
			return id
		}
	}
	return 0
}

// EncodeExtraData is what MoMo echoes back in extraData.
func EncodeExtraData(orderID uint64) string {
	v := url.Values{}
	v.Set("rentalOrderId", strconv.FormatUint(orderID, 10))
	return base64.StdEncoding.EncodeToString([]byte(v.Encode()))
}

func orderIDFromExtraData(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if id := orderIDFromPairs(raw); id > 0 {
		return id
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil {
			if id := orderIDFromPairs(string(decoded)); id > 0 {
				return id
			}
		}
	}
	return 0
}

func orderIDFromPairs(s string) uint64 {
	if !strings.Contains(s, "=") {
		return 0
	}
	v, err := url.ParseQuery(s)
	if err != nil {
		return 0
	}
	for _, key := range []string{"rentalOrderId", "orderId"} {
		if id := parseID(v.Get(key)); id > 0 {
			return id
		}
	}
	return 0
}

// Target is the frontend path for the resolved redirect. orderID is the final
// id after every lookup, 0 if none was found.
func (r Redirect) Target(frontendURL string, orderID uint64) string {
	base := strings.TrimRight(frontendURL, "/")
	switch r.Outcome {
	case OutcomeSuccess:
		if orderID == 0 {
			return base + "/orders?payment=success"
		}
		return fmt.Sprintf("%s/orders/%d?payment=success", base, orderID)
	case OutcomeCancelled, OutcomeFailed:
		if orderID == 0 {
			return base + "/"
		}
		return fmt.Sprintf("%s/checkout?orderId=%d", base, orderID)
	default:
		return base + "/?warning=" + warningUnexpectedReturn
	}
}

func parseID(s string) uint64 {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func has(q url.Values, keys ...string) bool {
	for _, k := range keys {
		if _, ok := q[k]; ok {
			return true
		}
	}
	return false
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func isCancelledStatus(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CANCELLED", "CANCELED", "CANCEL", "USER_CANCELLED", "USER_CANCELED":
		return true
	}
	return false
}
