package models

import "time"

const (
	PaymentTypeDeposit   = "deposit"
	PaymentTypeRentalFee = "rental_fee"
	PaymentTypeRefund    = "refund"

	PaymentMethodMoMo         = "momo"
	PaymentMethodPayOS        = "payos"
	PaymentMethodMidtrans     = "midtrans"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"

	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Payment keeps the durable mapping from gateway references back to the
// rental order, written before the customer is sent to the gateway.
type Payment struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	RentalOrderID    uint64     `gorm:"index;not null" json:"rental_order_id"`
	UserID           uint64     `gorm:"index;not null" json:"user_id"`
	Amount           float64    `gorm:"not null" json:"amount"`
	PaymentType      string     `gorm:"size:20;not null" json:"payment_type"`
	PaymentMethod    string     `gorm:"size:20;not null" json:"payment_method"`
	Status           string     `gorm:"size:20;not null;default:pending" json:"status"`
	GatewayOrderID   *string    `gorm:"size:64;uniqueIndex" json:"gateway_order_id,omitempty"`
	GatewayOrderCode *int64     `gorm:"uniqueIndex" json:"gateway_order_code,omitempty"`
	GatewayTransID   string     `gorm:"size:64" json:"gateway_trans_id,omitempty"`
	PayURL           string     `gorm:"size:512" json:"pay_url,omitempty"`
	ReceiptURL       string     `gorm:"size:512" json:"receipt_url,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p Payment) Settled() bool {
	return p.Status == PaymentStatusPaid
}

type InitiatePaymentInput struct {
	Provider    string `json:"provider" binding:"required,oneof=momo payos midtrans"`
	PaymentType string `json:"payment_type" binding:"required,oneof=deposit rental_fee"`
}
