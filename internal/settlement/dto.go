package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// Policy selects which vendor orders a payout run considers.
type Policy string

const (
	// PolicyPeriod pays COMPLETED vendor orders whose parent order was placed
	// inside a date window, regardless of how the buyer paid.
	PolicyPeriod Policy = "period"
	// PolicyOnline pays every gateway-settled vendor order not yet paid out,
	// regardless of date or fulfillment progress.
	PolicyOnline Policy = "online"
)

// Period is an operator-selected date window. End is inclusive: an order
// placed any time on the End date belongs to the period.
type Period struct {
	Start time.Time
	End   time.Time
}

// Selection captures the repository-level candidate filter for a payout run.
// Status and PaidOnline are the pluggable predicate: the period policy selects
// by fulfillment status, the online policy by payment outcome.
type Selection struct {
	Status      *enums.VendorOrderStatus
	PaidOnline  bool
	PeriodStart *time.Time
	PeriodEnd   *time.Time // exclusive
	VendorID    *uuid.UUID
}

// VendorPayoutSummary reports one vendor's slice of a run.
type VendorPayoutSummary struct {
	PayoutID        uuid.UUID `json:"payout_id,omitempty"`
	VendorID        uuid.UUID `json:"vendor_id"`
	OrderCount      int       `json:"order_count"`
	GrossCents      int       `json:"gross_cents"`
	CommissionCents int       `json:"commission_cents"`
	NetCents        int       `json:"net_cents"`
}

// RunSummary reports the outcome of a payout run.
type RunSummary struct {
	Policy         Policy                `json:"policy"`
	Payouts        []VendorPayoutSummary `json:"payouts"`
	TotalNetCents  int                   `json:"total_net_cents"`
	SkippedVendors int                   `json:"skipped_vendors"`
}

// PayoutFilters describe the payout listing inputs.
type PayoutFilters struct {
	VendorID *uuid.UUID
	Status   *enums.PayoutStatus
}

// CODSettlementResult reports a COD commission acknowledgment run. VendorID is
// nil when the run covered all vendors.
type CODSettlementResult struct {
	VendorID        *uuid.UUID `json:"vendor_id,omitempty"`
	OrderCount      int        `json:"order_count"`
	GrossCents      int        `json:"gross_cents"`
	CommissionCents int        `json:"commission_cents"`
	SettledAt       time.Time  `json:"settled_at"`
}
