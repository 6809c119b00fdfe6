package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/internal/settlement"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

// Repository defines the read queries backing statements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	VendorOrdersInPeriod(ctx context.Context, vendorID uuid.UUID, start, end time.Time) ([]models.VendorOrder, error)
	PayoutsInPeriod(ctx context.Context, vendorID uuid.UUID, start, end time.Time) ([]models.Payout, error)
}

// Service produces vendor statements and the platform dues summary.
type Service interface {
	VendorStatement(ctx context.Context, vendorID uuid.UUID, start, end time.Time) (*Statement, error)
	DuesSummary(ctx context.Context) (*DuesSummary, error)
}

type service struct {
	repo           Repository
	settlementRepo settlement.Repository
}

// NewService builds the reporting service.
func NewService(repo Repository, settlementRepo settlement.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reporting repository required")
	}
	if settlementRepo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	return &service{repo: repo, settlementRepo: settlementRepo}, nil
}

// VendorStatement aggregates a vendor's orders and payouts over [start, end).
// All money figures come from the placement-time snapshots.
func (s *service) VendorStatement(ctx context.Context, vendorID uuid.UUID, start, end time.Time) (*Statement, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if !end.After(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period end must be after start")
	}

	vendorOrders, err := s.repo.VendorOrdersInPeriod(ctx, vendorID, start, end)
	if err != nil {
		return nil, err
	}
	payouts, err := s.repo.PayoutsInPeriod(ctx, vendorID, start, end)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{VendorID: vendorID, PeriodStart: start, PeriodEnd: end}
	for _, vo := range vendorOrders {
		if vo.Status == enums.VendorOrderStatusCancelled {
			continue
		}
		commission := settlement.CommissionCents(vo.SubtotalCents, vo.CommissionPct)
		stmt.OrderCount++
		stmt.GrossCents += vo.SubtotalCents
		stmt.CommissionCents += commission
		stmt.NetCents += vo.SubtotalCents - commission

		if vo.Order != nil && vo.Order.PaymentMethod == enums.PaymentMethodCOD {
			stmt.CODGrossCents += vo.SubtotalCents
			if vo.CODCommissionSettledAt != nil {
				stmt.CODCommissionSettledCents += commission
			} else if vo.Status == enums.VendorOrderStatusCompleted {
				stmt.CODCommissionDueCents += commission
			}
			continue
		}
		stmt.OnlineGrossCents += vo.SubtotalCents
		stmt.OnlineNetCents += vo.SubtotalCents - commission
	}

	for _, payout := range payouts {
		switch payout.Status {
		case enums.PayoutStatusDue:
			stmt.PayoutDueCents += payout.AmountCents
		case enums.PayoutStatusPaid:
			stmt.PayoutPaidCents += payout.AmountCents
		case enums.PayoutStatusHold:
			stmt.PayoutHoldCents += payout.AmountCents
		}
	}
	return stmt, nil
}

// DuesSummary reports, per vendor, gateway money the platform still owes and
// COD commission vendors still owe the platform.
func (s *service) DuesSummary(ctx context.Context) (*DuesSummary, error) {
	eligible, err := s.settlementRepo.FindEligibleVendorOrders(ctx, settlement.Selection{PaidOnline: true})
	if err != nil {
		return nil, err
	}
	codOutstanding, err := s.settlementRepo.FindUnsettledCODVendorOrders(ctx, nil)
	if err != nil {
		return nil, err
	}

	byVendor := map[uuid.UUID]*VendorDues{}
	vendor := func(id uuid.UUID) *VendorDues {
		if dues, ok := byVendor[id]; ok {
			return dues
		}
		dues := &VendorDues{VendorID: id}
		byVendor[id] = dues
		return dues
	}

	summary := &DuesSummary{}
	for _, vo := range eligible {
		net := vo.SubtotalCents - settlement.CommissionCents(vo.SubtotalCents, vo.CommissionPct)
		dues := vendor(vo.VendorID)
		dues.UnpaidOrderCount++
		dues.UnpaidNetCents += net
		summary.TotalUnpaidNetCents += net
	}
	for _, vo := range codOutstanding {
		commission := settlement.CommissionCents(vo.SubtotalCents, vo.CommissionPct)
		dues := vendor(vo.VendorID)
		dues.CODUnsettledVendorOrders++
		dues.CODCommissionOwedCents += commission
		summary.TotalCODCommissionCents += commission
	}

	for _, dues := range byVendor {
		summary.Vendors = append(summary.Vendors, *dues)
	}
	sort.Slice(summary.Vendors, func(i, j int) bool {
		return summary.Vendors[i].VendorID.String() < summary.Vendors[j].VendorID.String()
	})
	return summary, nil
}
