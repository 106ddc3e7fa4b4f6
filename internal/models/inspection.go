package models

import (
	"encoding/json"
	"time"
)

const (
	InspectionDelivery = "delivery"
	InspectionReturn   = "return"
)

type VehicleInspection struct {
	ID             uint64          `gorm:"primaryKey" json:"id"`
	RentalOrderID  uint64          `gorm:"index;not null" json:"rental_order_id"`
	Kind           string          `gorm:"size:10;not null" json:"kind"`
	OdometerKm     int             `json:"odometer_km"`
	BatteryPercent int             `json:"battery_percent"`
	Condition      string          `gorm:"type:text" json:"condition"`
	Photos         json.RawMessage `gorm:"type:json" json:"photos"`
	RecordedBy     uint64          `json:"recorded_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

type InspectionInput struct {
	OdometerKm     int      `json:"odometer_km" binding:"min=0"`
	BatteryPercent int      `json:"battery_percent" binding:"min=0,max=100"`
	Condition      string   `json:"condition"`
	Photos         []string `json:"photos" binding:"max=6,dive,url"`
}

type ReceiptInput struct {
	ReceiptURL string `json:"receipt_url" binding:"omitempty,url"`
}

type FeesInput struct {
	ExtraFee    float64 `json:"extra_fee" binding:"min=0"`
	DamageFee   float64 `json:"damage_fee" binding:"min=0"`
	Discount    float64 `json:"discount" binding:"min=0"`
	DamageNotes string  `json:"damage_notes"`
}
