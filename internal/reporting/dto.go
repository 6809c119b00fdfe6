package reporting

import (
	"time"

	"github.com/google/uuid"
)

// Statement is a vendor's activity summary for a date window.
type Statement struct {
	VendorID    uuid.UUID `json:"vendor_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	OrderCount      int `json:"order_count"`
	GrossCents      int `json:"gross_cents"`
	CommissionCents int `json:"commission_cents"`
	NetCents        int `json:"net_cents"`

	OnlineGrossCents int `json:"online_gross_cents"`
	OnlineNetCents   int `json:"online_net_cents"`

	CODGrossCents             int `json:"cod_gross_cents"`
	CODCommissionDueCents     int `json:"cod_commission_due_cents"`
	CODCommissionSettledCents int `json:"cod_commission_settled_cents"`

	PayoutDueCents  int `json:"payout_due_cents"`
	PayoutPaidCents int `json:"payout_paid_cents"`
	PayoutHoldCents int `json:"payout_hold_cents"`
}

// VendorDues is one vendor's outstanding position in the dues summary.
type VendorDues struct {
	VendorID                 uuid.UUID `json:"vendor_id"`
	UnpaidOrderCount         int       `json:"unpaid_order_count"`
	UnpaidNetCents           int       `json:"unpaid_net_cents"`
	CODCommissionOwedCents   int       `json:"cod_commission_owed_cents"`
	CODUnsettledVendorOrders int       `json:"cod_unsettled_vendor_orders"`
}

// DuesSummary is the platform-wide outstanding position.
type DuesSummary struct {
	Vendors                 []VendorDues `json:"vendors"`
	TotalUnpaidNetCents     int          `json:"total_unpaid_net_cents"`
	TotalCODCommissionCents int          `json:"total_cod_commission_cents"`
}
