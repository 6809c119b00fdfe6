package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

type service struct {
	repo Repository
}

// NewService builds the vendors service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Vendor, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	return s.repo.FindByOwnerUserID(ctx, ownerUserID)
}

// UpdateCommissionPct changes the rate applied to FUTURE orders. Existing
// vendor orders keep the snapshot taken when they were placed.
func (s *service) UpdateCommissionPct(ctx context.Context, id uuid.UUID, pct int) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if pct < 0 || pct > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission pct must be between 0 and 100")
	}
	if err := s.repo.UpdateCommissionPct(ctx, id, pct); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*models.Vendor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if err := s.repo.SetApproval(ctx, id, approved); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
