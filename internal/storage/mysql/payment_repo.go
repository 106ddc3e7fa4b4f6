package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
)

type paymentRepo struct {
	db *gorm.DB
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *paymentRepo) SetGatewayRefs(ctx context.Context, id uint64, refs storage.GatewayRefs) error {
	updates := map[string]any{"pay_url": refs.PayURL}
	if refs.GatewayOrderID != "" {
		updates["gateway_order_id"] = refs.GatewayOrderID
	}
	if refs.GatewayOrderCode != 0 {
		updates["gateway_order_code"] = refs.GatewayOrderCode
	}
	return translate(r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *paymentRepo) GetByID(ctx context.Context, id uint64) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepo) GetByGatewayOrderID(ctx context.Context, ref string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("gateway_order_id = ?", ref).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepo) GetByGatewayOrderCode(ctx context.Context, code int64) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("gateway_order_code = ?", code).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.WithContext(ctx).Where("rental_order_id = ?", orderID).Order("id").Find(&ps).Error
	return ps, translate(err)
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID uint64) ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&ps).Error
	return ps, translate(err)
}

func (r *paymentRepo) Settle(ctx context.Context, id uint64, status, transID string, at time.Time) (bool, error) {
	updates := map[string]any{"status": status, "gateway_trans_id": transID}
	if status == models.PaymentStatusPaid {
		updates["paid_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
