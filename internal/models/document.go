package models

import "time"

type DriverLicense struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	UserID        uint64     `gorm:"uniqueIndex;not null" json:"user_id"`
	LicenseNumber string     `gorm:"size:30;not null" json:"license_number"`
	Class         string     `gorm:"size:10" json:"class"`
	FullName      string     `gorm:"size:100" json:"full_name"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	FrontImageURL string     `gorm:"size:512" json:"front_image_url"`
	BackImageURL  string     `gorm:"size:512" json:"back_image_url"`
	Verified      bool       `gorm:"default:false" json:"verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CitizenID struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	IDNumber      string    `gorm:"size:20;not null" json:"id_number"`
	FullName      string    `gorm:"size:100" json:"full_name"`
	DateOfBirth   string    `gorm:"size:10" json:"date_of_birth"` // YYYY-MM-DD
	Address       string    `gorm:"size:255" json:"address"`
	FrontImageURL string    `gorm:"size:512" json:"front_image_url"`
	BackImageURL  string    `gorm:"size:512" json:"back_image_url"`
	Verified      bool      `gorm:"default:false" json:"verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type DriverLicenseInput struct {
	LicenseNumber string `json:"license_number" binding:"required"`
	Class         string `json:"class"`
	FullName      string `json:"full_name" binding:"required"`
	ExpiresAt     string `json:"expires_at"` // YYYY-MM-DD
	FrontImageURL string `json:"front_image_url" binding:"required,url"`
	BackImageURL  string `json:"back_image_url" binding:"omitempty,url"`
}

type CitizenIDInput struct {
	IDNumber      string `json:"id_number" binding:"required,len=12,numeric"`
	FullName      string `json:"full_name" binding:"required"`
	DateOfBirth   string `json:"date_of_birth" binding:"required"`
	Address       string `json:"address"`
	FrontImageURL string `json:"front_image_url" binding:"required,url"`
	BackImageURL  string `json:"back_image_url" binding:"omitempty,url"`
}

type VerifyDocumentsInput struct {
	DriverLicense bool `json:"driver_license"`
	CitizenID     bool `json:"citizen_id"`
}

// Documents is what a user has on file.
type Documents struct {
	DriverLicense *DriverLicense `json:"driver_license"`
	CitizenID     *CitizenID     `json:"citizen_id"`
}

type Feedback struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	RentalOrderID uint64    `gorm:"uniqueIndex;not null" json:"rental_order_id"`
	UserID        uint64    `gorm:"index;not null" json:"user_id"`
	CarID         uint64    `gorm:"index;not null" json:"car_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Content       string    `gorm:"type:text" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

type FeedbackInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Content string `json:"content" binding:"max=2000"`
}
