package enums

import "fmt"

// PayoutStatus tracks an operator-managed payout batch.
type PayoutStatus string

const (
	PayoutStatusDue  PayoutStatus = "DUE"
	PayoutStatusPaid PayoutStatus = "PAID"
	PayoutStatusHold PayoutStatus = "HOLD"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusDue,
	PayoutStatusPaid,
	PayoutStatusHold,
}

// String implements fmt.Stringer.
func (p PayoutStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutStatus.
func (p PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}
