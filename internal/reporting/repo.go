package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reporting repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) VendorOrdersInPeriod(ctx context.Context, vendorID uuid.UUID, start, end time.Time) ([]models.VendorOrder, error) {
	var records []models.VendorOrder
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("vendor_id = ?", vendorID).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) PayoutsInPeriod(ctx context.Context, vendorID uuid.UUID, start, end time.Time) ([]models.Payout, error) {
	var records []models.Payout
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
