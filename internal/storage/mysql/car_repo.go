package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental-backend/internal/models"
)

type carRepo struct {
	db *gorm.DB
}

func (r *carRepo) Create(ctx context.Context, car *models.Car) error {
	return translate(r.db.WithContext(ctx).Create(car).Error)
}

func (r *carRepo) GetByID(ctx context.Context, id uint64) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).Preload("RentalLocation").First(&car, id).Error; err != nil {
		return nil, translate(err)
	}
	return &car, nil
}

func (r *carRepo) List(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	err := r.db.WithContext(ctx).Preload("RentalLocation").Order("id").Find(&cars).Error
	return cars, translate(err)
}

// UpsertLegacy inserts or refreshes a car keyed by its legacy id.
func (r *carRepo) UpsertLegacy(ctx context.Context, car *models.Car) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "legacy_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "brand", "model", "license_plate", "seats", "image_url", "status", "rental_location_id",
			"price_4h", "price_8h", "price_per_day",
			"price_4h_with_driver", "price_8h_with_driver", "price_per_day_with_driver",
			"updated_at",
		}),
	}).Create(car).Error)
}

type locationRepo struct {
	db *gorm.DB
}

func (r *locationRepo) Create(ctx context.Context, loc *models.RentalLocation) error {
	return translate(r.db.WithContext(ctx).Create(loc).Error)
}

func (r *locationRepo) GetByID(ctx context.Context, id uint64) (*models.RentalLocation, error) {
	var loc models.RentalLocation
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

func (r *locationRepo) List(ctx context.Context, activeOnly bool) ([]models.RentalLocation, error) {
	q := r.db.WithContext(ctx).Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var locs []models.RentalLocation
	return locs, translate(q.Find(&locs).Error)
}

func (r *locationRepo) UpsertLegacy(ctx context.Context, loc *models.RentalLocation) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "legacy_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "phone", "is_active"}),
	}).Create(loc).Error)
}
