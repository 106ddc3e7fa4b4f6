package models

import (
	"time"

	"carrental-backend/internal/rental"
)

// RentalOrder is never deleted; it only moves through rental.Status.
type RentalOrder struct {
	ID                 uint64        `gorm:"primaryKey" json:"id"`
	CarID              uint64        `gorm:"index;not null" json:"car_id"`
	UserID             uint64        `gorm:"index;not null" json:"user_id"`
	RentalLocationID   uint64        `gorm:"not null" json:"rental_location_id"`
	PhoneNumber        string        `gorm:"size:20;not null" json:"phone_number"`
	PickupTime         time.Time     `gorm:"not null" json:"pickup_time"`
	ExpectedReturnTime time.Time     `gorm:"not null" json:"expected_return_time"`
	ActualReturnTime   *time.Time    `json:"actual_return_time,omitempty"`
	WithDriver         bool          `json:"with_driver"`
	OrderDate          time.Time     `json:"order_date"`
	Status             rental.Status `gorm:"index;not null;default:0" json:"status"`

	SubTotal    float64 `json:"sub_total"`
	Deposit     float64 `json:"deposit"`
	Discount    float64 `json:"discount"`
	ExtraFee    float64 `json:"extra_fee"`
	DamageFee   float64 `json:"damage_fee"`
	DamageNotes string  `gorm:"type:text" json:"damage_notes"`
	Total       float64 `json:"total"`

	CancelReason string `gorm:"size:255" json:"cancel_reason,omitempty"`
	LegacyID     *int64 `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Car            *Car                `gorm:"foreignKey:CarID" json:"car,omitempty"`
	RentalLocation *RentalLocation     `gorm:"foreignKey:RentalLocationID" json:"rental_location,omitempty"`
	Payments       []Payment           `gorm:"foreignKey:RentalOrderID" json:"payments,omitempty"`
	Inspections    []VehicleInspection `gorm:"foreignKey:RentalOrderID" json:"inspections,omitempty"`
}

func (o RentalOrder) Range() rental.Range {
	return rental.Range{OrderID: o.ID, Start: o.PickupTime, End: o.ExpectedReturnTime}
}

type CreateOrderInput struct {
	CarID              uint64 `json:"car_id" binding:"required"`
	RentalLocationID   uint64 `json:"rental_location_id" binding:"required"`
	PhoneNumber        string `json:"phone_number" binding:"required,vnphone"`
	PickupTime         string `json:"pickup_time" binding:"required"`
	ExpectedReturnTime string `json:"expected_return_time" binding:"required"`
	WithDriver         bool   `json:"with_driver"`
}

type CancelOrderInput struct {
	Reason string `json:"reason" binding:"max=255"`
}

// OrderFilter narrows staff listings. Zero values mean "any".
type OrderFilter struct {
	UserID   uint64
	CarID    uint64
	Statuses []rental.Status
}
