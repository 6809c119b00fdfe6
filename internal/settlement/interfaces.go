package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
)

// Repository defines persistence operations for payouts and COD settlement.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindEligibleVendorOrders(ctx context.Context, sel Selection) ([]models.VendorOrder, error)
	CreatePayout(ctx context.Context, payout *models.Payout) (*models.Payout, error)
	CreatePayoutItems(ctx context.Context, items []models.PayoutItem) error
	FindPayoutByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ListPayouts(ctx context.Context, filters PayoutFilters) ([]models.Payout, error)
	UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status enums.PayoutStatus) error
	FindUnsettledCODVendorOrders(ctx context.Context, vendorID *uuid.UUID) ([]models.VendorOrder, error)
	MarkCODCommissionSettled(ctx context.Context, vendorOrderIDs []uuid.UUID, at time.Time) (int64, error)
}

// Service runs payout generation and settlement mutations.
type Service interface {
	GeneratePeriodPayouts(ctx context.Context, period Period) (*RunSummary, error)
	GenerateOnlinePayouts(ctx context.Context) (*RunSummary, error)
	PreviewPeriod(ctx context.Context, period Period) (*RunSummary, error)
	SettleCODCommission(ctx context.Context, vendorID *uuid.UUID) (*CODSettlementResult, error)
	ListUnsettledCOD(ctx context.Context, vendorID *uuid.UUID) ([]models.VendorOrder, error)
	ListPayouts(ctx context.Context, filters PayoutFilters) ([]models.Payout, error)
	SetPayoutStatus(ctx context.Context, payoutID uuid.UUID, status enums.PayoutStatus) (*models.Payout, error)
}
