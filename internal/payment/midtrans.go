package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type Midtrans struct {
	cfg  MidtransConfig
	snap snap.Client
	now  func() time.Time
}

func NewMidtrans(cfg MidtransConfig) *Midtrans {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	m := &Midtrans{cfg: cfg, now: time.Now}
	m.snap.New(cfg.ServerKey, env)
	return m
}

func (m *Midtrans) Name() Provider { return ProviderMidtrans }

// CreatePayment opens a Snap transaction. The snap client has no context
// support, so ctx is only checked before the call.
func (m *Midtrans) CreatePayment(ctx context.Context, req Request) (*Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orderRef := GatewayOrderID(req.OrderID, m.now())
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderRef,
			GrossAmt: req.Amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.BuyerName,
			Email: req.BuyerEmail,
			Phone: req.BuyerPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("RO-%d", req.OrderID),
				Name:  req.Description,
				Price: req.Amount,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{Finish: req.ReturnURL},
	}

	resp, snapErr := m.snap.CreateTransaction(snapReq)
	if snapErr != nil {
		return nil, fmt.Errorf("%w: midtrans %s", ErrGatewayRejected, snapErr.GetMessage())
	}

	return &Link{GatewayOrderID: orderRef, PayURL: resp.RedirectURL, Token: resp.Token}, nil
}

// MidtransNotification carries the fields of the HTTP notification we use.
type MidtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// MidtransSignature is sha512(order_id + status_code + gross_amount + server key).
func MidtransSignature(serverKey string, n MidtransNotification) string {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (m *Midtrans) VerifyNotification(n MidtransNotification) (Notification, error) {
	if !equalSignature(MidtransSignature(m.cfg.ServerKey, n), n.SignatureKey) {
		return Notification{}, ErrInvalidSignature
	}

	out := Notification{
		Provider:       ProviderMidtrans,
		GatewayOrderID: n.OrderID,
		TransID:        n.TransactionID,
		OrderID:        OrderIDFromGatewayOrderID(n.OrderID),
	}
	if whole, _, _ := strings.Cut(n.GrossAmount, "."); whole != "" {
		out.Amount, _ = strconv.ParseInt(whole, 10, 64)
	}

	switch n.TransactionStatus {
	case "capture":
		// challenge stays pending until the merchant reviews it
		out.Paid = n.FraudStatus == "accept" || n.FraudStatus == ""
	case "settlement":
		out.Paid = true
	case "deny", "cancel", "expire", "failure":
		out.Failed = true
	}
	return out, nil
}
