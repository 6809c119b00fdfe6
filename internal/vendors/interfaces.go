package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
)

// Repository defines persistence operations for vendor records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*models.Vendor, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error)
	UpdateCommissionPct(ctx context.Context, id uuid.UUID, pct int) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) error
}

// Service exposes vendor lookups and admin mutations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Vendor, error)
	UpdateCommissionPct(ctx context.Context, id uuid.UUID, pct int) (*models.Vendor, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*models.Vendor, error)
}
