package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

type stubRepo struct {
	vendors map[uuid.UUID]*models.Vendor
	updates []int
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if v, ok := s.vendors[id]; ok {
		copy := *v
		return &copy, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
}

func (s *stubRepo) FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*models.Vendor, error) {
	for _, v := range s.vendors {
		if v.OwnerUserID == ownerUserID {
			copy := *v
			return &copy, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found for user")
}

func (s *stubRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, id := range ids {
		if v, ok := s.vendors[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateCommissionPct(ctx context.Context, id uuid.UUID, pct int) error {
	v, ok := s.vendors[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	v.CommissionPct = pct
	s.updates = append(s.updates, pct)
	return nil
}

func (s *stubRepo) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	v, ok := s.vendors[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	v.IsApproved = approved
	return nil
}

func TestUpdateCommissionPct(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := &stubRepo{vendors: map[uuid.UUID]*models.Vendor{
		vendorID: {ID: vendorID, OwnerUserID: uuid.New(), CommissionPct: 10},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	updated, err := svc.UpdateCommissionPct(context.Background(), vendorID, 15)
	if err != nil {
		t.Fatalf("UpdateCommissionPct: %v", err)
	}
	if updated.CommissionPct != 15 {
		t.Fatalf("commission = %d, want 15", updated.CommissionPct)
	}
}

func TestUpdateCommissionPctRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := &stubRepo{vendors: map[uuid.UUID]*models.Vendor{
		vendorID: {ID: vendorID, CommissionPct: 10},
	}}
	svc, _ := NewService(repo)

	for _, pct := range []int{-1, 101} {
		_, err := svc.UpdateCommissionPct(context.Background(), vendorID, pct)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("pct %d: unexpected error %v", pct, err)
		}
	}
	if len(repo.updates) != 0 {
		t.Fatalf("expected no repo writes, got %v", repo.updates)
	}
}

func TestSetApproval(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := &stubRepo{vendors: map[uuid.UUID]*models.Vendor{
		vendorID: {ID: vendorID},
	}}
	svc, _ := NewService(repo)

	updated, err := svc.SetApproval(context.Background(), vendorID, true)
	if err != nil {
		t.Fatalf("SetApproval: %v", err)
	}
	if !updated.IsApproved {
		t.Fatal("expected vendor approved")
	}
}
