package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Provider string

const (
	ProviderMoMo     Provider = "momo"
	ProviderPayOS    Provider = "payos"
	ProviderMidtrans Provider = "midtrans"
)

var (
	ErrInvalidSignature = errors.New("invalid gateway signature")
	ErrGatewayRejected  = errors.New("gateway rejected the request")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// Request is a payment link request for one Payment row.
type Request struct {
	OrderID     uint64
	PaymentID   uint64
	Amount      int64
	Description string
	ReturnURL   string
	NotifyURL   string
	BuyerName   string
	BuyerEmail  string
	BuyerPhone  string
}

// Link is what the gateway handed back. Either GatewayOrderID or
// GatewayOrderCode identifies the transaction on the gateway side.
type Link struct {
	GatewayOrderID   string
	GatewayOrderCode int64
	PayURL           string
	Token            string
}

type Gateway interface {
	Name() Provider
	CreatePayment(ctx context.Context, req Request) (*Link, error)
}

// Notification is a verified settlement callback in gateway-neutral form.
type Notification struct {
	Provider         Provider
	GatewayOrderID   string
	GatewayOrderCode int64
	TransID          string
	Amount           int64
	Paid             bool
	Failed           bool
	OrderID          uint64 // from extraData, if the gateway echoes it
}

// GatewayOrderID builds the MoMo/Midtrans order reference. The nanosecond
// suffix keeps retries for the same order unique.
func GatewayOrderID(orderID uint64, now time.Time) string {
	return fmt.Sprintf("RO%d-%d", orderID, now.UnixNano())
}

// OrderIDFromGatewayOrderID reverses GatewayOrderID; 0 if the format differs.
func OrderIDFromGatewayOrderID(ref string) uint64 {
	ref = strings.TrimPrefix(ref, "RO")
	head, _, ok := strings.Cut(ref, "-")
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// OrderCode builds a PayOS numeric order code. The whole payment id leads, so
// codes never collide across payments; the time suffix separates databases
// that reuse ids. Codes stay far above any internal order id and below 2^53.
func OrderCode(paymentID uint64, now time.Time) int64 {
	return int64(paymentID)*1_000_000 + now.Unix()%1_000_000
}
