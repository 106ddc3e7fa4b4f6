package models

import (
	"time"

	"carrental-backend/internal/rental"
)

type Car struct {
	ID               uint64  `gorm:"primaryKey" json:"id"`
	Name             string  `gorm:"size:100;not null" json:"name"`
	Brand            string  `gorm:"size:50" json:"brand"`
	Model            string  `gorm:"size:50" json:"model"`
	LicensePlate     string  `gorm:"size:20;index" json:"license_plate"`
	Seats            int     `json:"seats"`
	ImageURL         string  `gorm:"size:255" json:"image_url"`
	Status           string  `gorm:"size:20;default:available" json:"status"` // available, maintenance, retired
	RentalLocationID *uint64 `json:"rental_location_id,omitempty"`
	LegacyID         *int64  `gorm:"uniqueIndex" json:"-"`

	Price4h               float64 `gorm:"column:price_4h" json:"price_4h"`
	Price8h               float64 `gorm:"column:price_8h" json:"price_8h"`
	PricePerDay           float64 `gorm:"column:price_per_day" json:"price_per_day"`
	Price4hWithDriver     float64 `gorm:"column:price_4h_with_driver" json:"price_4h_with_driver"`
	Price8hWithDriver     float64 `gorm:"column:price_8h_with_driver" json:"price_8h_with_driver"`
	PricePerDayWithDriver float64 `gorm:"column:price_per_day_with_driver" json:"price_per_day_with_driver"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RentalLocation *RentalLocation `gorm:"foreignKey:RentalLocationID" json:"rental_location,omitempty"`
}

func (c Car) Prices() rental.PriceTable {
	return rental.PriceTable{
		Price4h:               c.Price4h,
		Price8h:               c.Price8h,
		PricePerDay:           c.PricePerDay,
		Price4hWithDriver:     c.Price4hWithDriver,
		Price8hWithDriver:     c.Price8hWithDriver,
		PricePerDayWithDriver: c.PricePerDayWithDriver,
	}
}

func (c Car) Bookable() bool {
	return c.Status == "" || c.Status == "available"
}

type RentalLocation struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	LegacyID  *int64    `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type QuoteInput struct {
	PickupTime         string `json:"pickup_time" binding:"required"`          // 2024-01-01T10:00:00
	ExpectedReturnTime string `json:"expected_return_time" binding:"required"` // same layout, no offset
	WithDriver         bool   `json:"with_driver"`
}
