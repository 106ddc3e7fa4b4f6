package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental-backend/internal/models"
)

type documentRepo struct {
	db *gorm.DB
}

func (r *documentRepo) GetDriverLicense(ctx context.Context, userID uint64) (*models.DriverLicense, error) {
	var dl models.DriverLicense
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&dl).Error; err != nil {
		return nil, translate(err)
	}
	return &dl, nil
}

// UpsertDriverLicense replaces the user's license; a resubmission needs to be
// verified again.
func (r *documentRepo) UpsertDriverLicense(ctx context.Context, dl *models.DriverLicense) error {
	dl.Verified = false
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"license_number", "class", "full_name", "expires_at",
			"front_image_url", "back_image_url", "verified", "updated_at",
		}),
	}).Create(dl).Error)
}

func (r *documentRepo) GetCitizenID(ctx context.Context, userID uint64) (*models.CitizenID, error) {
	var c models.CitizenID
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *documentRepo) UpsertCitizenID(ctx context.Context, c *models.CitizenID) error {
	c.Verified = false
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"id_number", "full_name", "date_of_birth", "address",
			"front_image_url", "back_image_url", "verified", "updated_at",
		}),
	}).Create(c).Error)
}

func (r *documentRepo) SetVerified(ctx context.Context, userID uint64, license, citizen bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DriverLicense{}).Where("user_id = ?", userID).Update("verified", license).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&models.CitizenID{}).Where("user_id = ?", userID).Update("verified", citizen).Error; err != nil {
			return translate(err)
		}
		// a user counts as verified once both documents pass
		return translate(tx.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", license && citizen).Error)
	})
}

type inspectionRepo struct {
	db *gorm.DB
}

func (r *inspectionRepo) Create(ctx context.Context, in *models.VehicleInspection) error {
	return translate(r.db.WithContext(ctx).Create(in).Error)
}

func (r *inspectionRepo) ListByOrder(ctx context.Context, orderID uint64) ([]models.VehicleInspection, error) {
	var out []models.VehicleInspection
	err := r.db.WithContext(ctx).Where("rental_order_id = ?", orderID).Order("id").Find(&out).Error
	return out, translate(err)
}

type feedbackRepo struct {
	db *gorm.DB
}

func (r *feedbackRepo) Create(ctx context.Context, f *models.Feedback) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *feedbackRepo) GetByOrder(ctx context.Context, orderID uint64) (*models.Feedback, error) {
	var f models.Feedback
	if err := r.db.WithContext(ctx).Where("rental_order_id = ?", orderID).First(&f).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *feedbackRepo) ListByCar(ctx context.Context, carID uint64) ([]models.Feedback, error) {
	var out []models.Feedback
	err := r.db.WithContext(ctx).Where("car_id = ?", carID).Order("id DESC").Find(&out).Error
	return out, translate(err)
}
