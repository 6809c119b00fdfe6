package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
	"github.com/malpra/marketplace-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx      txRunner
	repo    Repository
	metrics *metrics.SettlementMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the settlement service. Metrics may be nil (no-op).
func NewService(tx txRunner, repo Repository, m *metrics.SettlementMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// CommissionCents computes the platform's cut of a subtotal, rounding half-up
// at the cent.
func CommissionCents(subtotalCents, pct int) int {
	return (subtotalCents*pct + 50) / 100
}

func (s *service) GeneratePeriodPayouts(ctx context.Context, period Period) (*RunSummary, error) {
	if period.End.Before(period.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period end must not be before start")
	}
	return s.generate(ctx, PolicyPeriod, periodSelection(period), &period)
}

func (s *service) GenerateOnlinePayouts(ctx context.Context) (*RunSummary, error) {
	return s.generate(ctx, PolicyOnline, Selection{PaidOnline: true}, nil)
}

// periodSelection pays COMPLETED vendor orders inside the window. The
// inclusive end date becomes an exclusive boundary one day later, so orders
// placed any time on the final day still belong to the period.
func periodSelection(period Period) Selection {
	completed := enums.VendorOrderStatusCompleted
	endExclusive := period.End.AddDate(0, 0, 1)
	return Selection{Status: &completed, PeriodStart: &period.Start, PeriodEnd: &endExclusive}
}

// PreviewPeriod computes what a period run would pay without writing anything.
func (s *service) PreviewPeriod(ctx context.Context, period Period) (*RunSummary, error) {
	if period.End.Before(period.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period end must not be before start")
	}
	eligible, err := s.repo.FindEligibleVendorOrders(ctx, periodSelection(period))
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{Policy: PolicyPeriod}
	for vendorID, group := range groupByVendor(eligible) {
		vendorSummary := summarize(vendorID, group)
		summary.Payouts = append(summary.Payouts, vendorSummary)
		summary.TotalNetCents += vendorSummary.NetCents
	}
	return summary, nil
}

// generate creates one payout per vendor with eligible orders. Each vendor is
// settled in its own transaction: a race on one vendor's orders skips that
// vendor without aborting the rest of the run.
func (s *service) generate(ctx context.Context, policy Policy, sel Selection, period *Period) (*RunSummary, error) {
	started := s.now()

	eligible, err := s.repo.FindEligibleVendorOrders(ctx, sel)
	if err != nil {
		s.metrics.IncFailure(string(policy))
		return nil, err
	}

	summary := &RunSummary{Policy: policy}
	for vendorID, group := range groupByVendor(eligible) {
		vendorSummary, err := s.settleVendor(ctx, policy, vendorID, group, period)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				// Another run consumed at least one of these vendor orders
				// after our read. Skip the vendor; the next run picks up
				// whatever is still unconsumed.
				summary.SkippedVendors++
				s.logg.Warn(s.logg.WithVendorID(ctx, vendorID.String()), "payout skipped: vendor orders already consumed")
				continue
			}
			s.metrics.IncFailure(string(policy))
			return nil, err
		}
		summary.Payouts = append(summary.Payouts, vendorSummary)
		summary.TotalNetCents += vendorSummary.NetCents
	}

	s.metrics.ObserveDuration(string(policy), s.now().Sub(started))
	s.metrics.IncSuccess(string(policy))
	s.metrics.AddPayouts(string(policy), len(summary.Payouts), int64(summary.TotalNetCents))
	return summary, nil
}

func (s *service) settleVendor(ctx context.Context, policy Policy, vendorID uuid.UUID, group []models.VendorOrder, period *Period) (VendorPayoutSummary, error) {
	vendorSummary := summarize(vendorID, group)

	start, end := payoutPeriod(group, period)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payout, err := repo.CreatePayout(ctx, &models.Payout{
			VendorID:    vendorID,
			AmountCents: vendorSummary.NetCents,
			Status:      enums.PayoutStatusDue,
			PeriodStart: start,
			PeriodEnd:   end,
		})
		if err != nil {
			return err
		}
		vendorSummary.PayoutID = payout.ID

		items := make([]models.PayoutItem, 0, len(group))
		for _, vo := range group {
			net := vo.SubtotalCents - CommissionCents(vo.SubtotalCents, vo.CommissionPct)
			items = append(items, models.PayoutItem{
				PayoutID:      payout.ID,
				VendorOrderID: vo.ID,
				AmountCents:   net,
			})
		}
		return repo.CreatePayoutItems(ctx, items)
	})
	if err != nil {
		return VendorPayoutSummary{}, err
	}
	return vendorSummary, nil
}

// SettleCODCommission acknowledges out-of-band commission remittance for one
// vendor, or for every vendor when vendorID is nil. Cash never moved through
// the platform, so this stamps the owing vendor orders instead of creating a
// payout. Re-running is a no-op: already-stamped orders drop out of selection.
func (s *service) SettleCODCommission(ctx context.Context, vendorID *uuid.UUID) (*CODSettlementResult, error) {
	if vendorID != nil && *vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id must not be empty")
	}

	var result *CODSettlementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pending, err := repo.FindUnsettledCODVendorOrders(ctx, vendorID)
		if err != nil {
			return err
		}

		at := s.now()
		result = &CODSettlementResult{VendorID: vendorID, SettledAt: at}
		if len(pending) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(pending))
		for _, vo := range pending {
			ids = append(ids, vo.ID)
			result.OrderCount++
			result.GrossCents += vo.SubtotalCents
			result.CommissionCents += CommissionCents(vo.SubtotalCents, vo.CommissionPct)
		}
		marked, err := repo.MarkCODCommissionSettled(ctx, ids, at)
		if err != nil {
			return err
		}
		if marked != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cod settlement raced with a concurrent acknowledgment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListUnsettledCOD(ctx context.Context, vendorID *uuid.UUID) ([]models.VendorOrder, error) {
	return s.repo.FindUnsettledCODVendorOrders(ctx, vendorID)
}

func (s *service) ListPayouts(ctx context.Context, filters PayoutFilters) ([]models.Payout, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout status filter")
	}
	return s.repo.ListPayouts(ctx, filters)
}

// SetPayoutStatus moves a payout between DUE, PAID and HOLD. Amounts and
// membership never change after creation; status is the only mutable field.
func (s *service) SetPayoutStatus(ctx context.Context, payoutID uuid.UUID, status enums.PayoutStatus) (*models.Payout, error) {
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout status")
	}

	var result *models.Payout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payout, err := repo.FindPayoutByID(ctx, payoutID)
		if err != nil {
			return err
		}
		if payout.Status == status {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payout already in requested status").
				WithDetails(map[string]any{"status": status})
		}

		if err := repo.UpdatePayoutStatus(ctx, payoutID, status); err != nil {
			return err
		}
		result, err = repo.FindPayoutByID(ctx, payoutID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func groupByVendor(records []models.VendorOrder) map[uuid.UUID][]models.VendorOrder {
	grouped := map[uuid.UUID][]models.VendorOrder{}
	for _, vo := range records {
		grouped[vo.VendorID] = append(grouped[vo.VendorID], vo)
	}
	return grouped
}

func summarize(vendorID uuid.UUID, group []models.VendorOrder) VendorPayoutSummary {
	summary := VendorPayoutSummary{VendorID: vendorID, OrderCount: len(group)}
	for _, vo := range group {
		commission := CommissionCents(vo.SubtotalCents, vo.CommissionPct)
		summary.GrossCents += vo.SubtotalCents
		summary.CommissionCents += commission
		summary.NetCents += vo.SubtotalCents - commission
	}
	return summary
}

// payoutPeriod returns the operator's window when there is one, otherwise the
// span [min, max] of the parent orders' placement times across the group.
func payoutPeriod(group []models.VendorOrder, period *Period) (time.Time, time.Time) {
	if period != nil {
		return period.Start, period.End
	}
	var start, end time.Time
	for _, vo := range group {
		placed := vo.CreatedAt
		if vo.Order != nil {
			placed = vo.Order.CreatedAt
		}
		if start.IsZero() || placed.Before(start) {
			start = placed
		}
		if placed.After(end) {
			end = placed
		}
	}
	return start, end
}
