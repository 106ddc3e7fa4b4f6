package mysql

import (
	"context"

	"gorm.io/gorm"

	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
)

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Create(ctx context.Context, order *models.RentalOrder) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepo) GetByID(ctx context.Context, id uint64) (*models.RentalOrder, error) {
	var o models.RentalOrder
	err := r.db.WithContext(ctx).
		Preload("Car").
		Preload("RentalLocation").
		Preload("Payments").
		Preload("Inspections").
		First(&o, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f models.OrderFilter) ([]models.RentalOrder, error) {
	q := r.db.WithContext(ctx).Preload("Car").Order("id DESC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.CarID != 0 {
		q = q.Where("car_id = ?", f.CarID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var orders []models.RentalOrder
	return orders, translate(q.Find(&orders).Error)
}

func (r *orderRepo) ActiveRanges(ctx context.Context, carID uint64) ([]rental.Range, error) {
	var orders []models.RentalOrder
	err := r.db.WithContext(ctx).
		Select("id", "pickup_time", "expected_return_time").
		Where("car_id = ? AND status IN ?", carID, rental.ActiveStatuses()).
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}

	ranges := make([]rental.Range, 0, len(orders))
	for _, o := range orders {
		ranges = append(ranges, o.Range())
	}
	return ranges, nil
}

func (r *orderRepo) Transition(ctx context.Context, id uint64, from []rental.Status, to rental.Status, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.RentalOrder{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
