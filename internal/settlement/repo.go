package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settlement repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindEligibleVendorOrders returns payout candidates that no payout has
// consumed yet, filtered by the run's selection predicate. The left join
// against payout_items is the read side of the guard; the unique index on
// vendor_order_id is the write side.
func (r *repository) FindEligibleVendorOrders(ctx context.Context, sel Selection) ([]models.VendorOrder, error) {
	query := r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Preload("Order").
		Joins("JOIN orders ON orders.id = vendor_orders.order_id").
		Joins("LEFT JOIN payout_items ON payout_items.vendor_order_id = vendor_orders.id").
		Where("payout_items.id IS NULL").
		Where("vendor_orders.status <> ?", enums.VendorOrderStatusCancelled)

	if sel.Status != nil {
		query = query.Where("vendor_orders.status = ?", *sel.Status)
	}
	if sel.PaidOnline {
		query = query.
			Joins("JOIN payments ON payments.order_id = orders.id").
			Where("payments.status = ?", enums.PaymentStatusPaid)
	}
	if sel.PeriodStart != nil {
		query = query.Where("orders.created_at >= ?", *sel.PeriodStart)
	}
	if sel.PeriodEnd != nil {
		query = query.Where("orders.created_at < ?", *sel.PeriodEnd)
	}
	if sel.VendorID != nil {
		query = query.Where("vendor_orders.vendor_id = ?", *sel.VendorID)
	}

	var records []models.VendorOrder
	if err := query.Order("vendor_orders.created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.Payout) (*models.Payout, error) {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(payout).Error; err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *repository) CreatePayoutItems(ctx context.Context, items []models.PayoutItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindPayoutByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListPayouts(ctx context.Context, filters PayoutFilters) ([]models.Payout, error) {
	query := r.db.WithContext(ctx).Preload("Items")
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var records []models.Payout
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status enums.PayoutStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
	}
	return nil
}

// FindUnsettledCODVendorOrders returns vendor orders still owing cash-collected
// commission: not cancelled, never acknowledged, and with no successful online
// payment on the parent order.
func (r *repository) FindUnsettledCODVendorOrders(ctx context.Context, vendorID *uuid.UUID) ([]models.VendorOrder, error) {
	query := r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Joins("JOIN orders ON orders.id = vendor_orders.order_id").
		Joins("LEFT JOIN payments ON payments.order_id = orders.id AND payments.status = ?", enums.PaymentStatusPaid).
		Where("payments.id IS NULL").
		Where("vendor_orders.status <> ?", enums.VendorOrderStatusCancelled).
		Where("vendor_orders.cod_commission_settled_at IS NULL")
	if vendorID != nil {
		query = query.Where("vendor_orders.vendor_id = ?", *vendorID)
	}

	var records []models.VendorOrder
	if err := query.Order("vendor_orders.created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkCODCommissionSettled stamps the acknowledgment timestamp on the given
// vendor orders. The IS NULL predicate keeps a concurrent run from re-stamping;
// the returned count tells the caller how many rows it actually won.
func (r *repository) MarkCODCommissionSettled(ctx context.Context, vendorOrderIDs []uuid.UUID, at time.Time) (int64, error) {
	if len(vendorOrderIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Where("id IN ? AND cod_commission_settled_at IS NULL", vendorOrderIDs).
		Update("cod_commission_settled_at", at)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
