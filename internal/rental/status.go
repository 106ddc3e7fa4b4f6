package rental

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the canonical order lifecycle state. The numeric values double as
// the rank used to enforce forward-only movement along the main sequence.
type Status int

const (
	StatusPending Status = iota
	StatusDocumentsSubmitted
	StatusConfirmed
	StatusCheckedIn
	StatusRenting
	StatusReturned
	StatusPaymentPending
	StatusCompleted
	StatusCancelled
	StatusRefunded
)

// Scheme selects how bare numbers are interpreted. The backend has shipped two
// numeric enums over time; keywords are scheme independent.
type Scheme int

const (
	SchemeFull    Scheme = iota // 10 states, same indices as Status
	SchemeCompact               // 9 states, no DocumentsSubmitted
)

var statusKeywords = [...]string{
	StatusPending:            "pending",
	StatusDocumentsSubmitted: "documents_submitted",
	StatusConfirmed:          "confirmed",
	StatusCheckedIn:          "checked_in",
	StatusRenting:            "renting",
	StatusReturned:           "returned",
	StatusPaymentPending:     "payment_pending",
	StatusCompleted:          "completed",
	StatusCancelled:          "cancelled",
	StatusRefunded:           "refunded",
}

var statusLabels = [...]string{
	StatusPending:            "Chờ đặt cọc",
	StatusDocumentsSubmitted: "Đã nộp giấy tờ",
	StatusConfirmed:          "Đã xác nhận",
	StatusCheckedIn:          "Đã nhận xe",
	StatusRenting:            "Đang thuê",
	StatusReturned:           "Đã trả xe",
	StatusPaymentPending:     "Chờ thanh toán",
	StatusCompleted:          "Hoàn thành",
	StatusCancelled:          "Đã hủy",
	StatusRefunded:           "Đã hoàn tiền",
}

var compactOrder = [...]Status{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusRenting,
	StatusReturned,
	StatusPaymentPending,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

// aliases maps folded keywords (lowercase, no diacritics, no separators) to
// the canonical status.
var aliases = map[string]Status{
	"pending":            StatusPending,
	"awaitingdeposit":    StatusPending,
	"waitingdeposit":     StatusPending,
	"new":                StatusPending,
	"choxacnhan":         StatusPending,
	"chodatcoc":          StatusPending,
	"chococ":             StatusPending,
	"dangcho":            StatusPending,
	"documentssubmitted": StatusDocumentsSubmitted,
	"documentsubmitted":  StatusDocumentsSubmitted,
	"depositpaid":        StatusDocumentsSubmitted,
	"danopgiayto":        StatusDocumentsSubmitted,
	"dadatcoc":           StatusDocumentsSubmitted,
	"confirmed":          StatusConfirmed,
	"approved":           StatusConfirmed,
	"daxacnhan":          StatusConfirmed,
	"checkedin":          StatusCheckedIn,
	"checkin":            StatusCheckedIn,
	"danhanxe":           StatusCheckedIn,
	"dacheckin":          StatusCheckedIn,
	"renting":            StatusRenting,
	"rented":             StatusRenting,
	"inprogress":         StatusRenting,
	"active":             StatusRenting,
	"dangthue":           StatusRenting,
	"returned":           StatusReturned,
	"datraxe":            StatusReturned,
	"paymentpending":     StatusPaymentPending,
	"pendingpayment":     StatusPaymentPending,
	"awaitingpayment":    StatusPaymentPending,
	"chothanhtoan":       StatusPaymentPending,
	"completed":          StatusCompleted,
	"complete":           StatusCompleted,
	"done":               StatusCompleted,
	"finished":           StatusCompleted,
	"hoanthanh":          StatusCompleted,
	"cancelled":          StatusCancelled,
	"canceled":           StatusCancelled,
	"cancel":             StatusCancelled,
	"dahuy":              StatusCancelled,
	"huy":                StatusCancelled,
	"refunded":           StatusRefunded,
	"refund":             StatusRefunded,
	"dahoantien":         StatusRefunded,
	"hoantien":           StatusRefunded,
}

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusRefunded
}

func (s Status) String() string {
	if !s.Valid() {
		return statusKeywords[StatusPending]
	}
	return statusKeywords[s]
}

// Label is the Vietnamese text shown to customers.
func (s Status) Label() string {
	if !s.Valid() {
		return statusLabels[StatusPending]
	}
	return statusLabels[s]
}

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRefunded
}

// Active statuses commit the car for the booked range.
func (s Status) Active() bool {
	return s == StatusConfirmed || s == StatusCheckedIn || s == StatusRenting
}

// ActiveStatuses is the "car is committed" set used by the conflict check.
func ActiveStatuses() []Status {
	return []Status{StatusConfirmed, StatusCheckedIn, StatusRenting}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		*s = StatusPending
		return nil
	}
	*s = Normalize(v)
	return nil
}

// Normalize maps any known representation onto the canonical set using the
// full numeric scheme. Unrecognised input yields StatusPending.
func Normalize(v interface{}) Status {
	return NormalizeWith(v, SchemeFull)
}

// NormalizeWith is Normalize with an explicit numeric scheme.
func NormalizeWith(v interface{}, scheme Scheme) Status {
	switch t := v.(type) {
	case nil:
		return StatusPending
	case Status:
		if t.Valid() {
			return t
		}
		return StatusPending
	case int:
		return fromNumber(int64(t), scheme)
	case int8:
		return fromNumber(int64(t), scheme)
	case int16:
		return fromNumber(int64(t), scheme)
	case int32:
		return fromNumber(int64(t), scheme)
	case int64:
		return fromNumber(t, scheme)
	case uint:
		return fromNumber(int64(t), scheme)
	case uint8:
		return fromNumber(int64(t), scheme)
	case uint16:
		return fromNumber(int64(t), scheme)
	case uint32:
		return fromNumber(int64(t), scheme)
	case uint64:
		if t > uint64(StatusRefunded) {
			return StatusPending
		}
		return fromNumber(int64(t), scheme)
	case float32:
		return fromFloat(float64(t), scheme)
	case float64:
		return fromFloat(t, scheme)
	case json.Number:
		return fromString(t.String(), scheme)
	case string:
		return fromString(t, scheme)
	case fmt.Stringer:
		return fromString(t.String(), scheme)
	default:
		return StatusPending
	}
}

// ParseStatus is the strict variant used for query filters: ok is false when
// the input is not recognised.
func ParseStatus(raw string) (Status, bool) {
	return lookup(raw, SchemeFull)
}

func fromFloat(f float64, scheme Scheme) Status {
	if f != float64(int64(f)) {
		return StatusPending
	}
	return fromNumber(int64(f), scheme)
}

func fromNumber(n int64, scheme Scheme) Status {
	s, ok := numberToStatus(n, scheme)
	if !ok {
		return StatusPending
	}
	return s
}

func numberToStatus(n int64, scheme Scheme) (Status, bool) {
	if scheme == SchemeCompact {
		if n < 0 || n >= int64(len(compactOrder)) {
			return StatusPending, false
		}
		return compactOrder[n], true
	}
	if n < 0 || n > int64(StatusRefunded) {
		return StatusPending, false
	}
	return Status(n), true
}

func fromString(raw string, scheme Scheme) Status {
	s, ok := lookup(raw, scheme)
	if !ok {
		return StatusPending
	}
	return s
}

func lookup(raw string, scheme Scheme) (Status, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusPending, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return numberToStatus(n, scheme)
	}
	s, ok := aliases[fold(raw)]
	return s, ok
}

// fold lowercases, removes Vietnamese diacritics and drops every non
// alphanumeric rune so "Đã hủy", "da-huy" and "DA_HUY" compare equal.
func fold(s string) string {
	s = strings.ReplaceAll(s, "đ", "d")
	s = strings.ReplaceAll(s, "Đ", "d")
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(out) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
