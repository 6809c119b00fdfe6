package enums

import "fmt"

// VendorOrderStatus tracks fulfillment of the per-vendor slice of an order.
// Vendors may move between any of these values; the machine is deliberately
// unconstrained in direction.
type VendorOrderStatus string

const (
	VendorOrderStatusPending    VendorOrderStatus = "PENDING"
	VendorOrderStatusProcessing VendorOrderStatus = "PROCESSING"
	VendorOrderStatusShipped    VendorOrderStatus = "SHIPPED"
	VendorOrderStatusCompleted  VendorOrderStatus = "COMPLETED"
	VendorOrderStatusCancelled  VendorOrderStatus = "CANCELLED"
)

var validVendorOrderStatuses = []VendorOrderStatus{
	VendorOrderStatusPending,
	VendorOrderStatusProcessing,
	VendorOrderStatusShipped,
	VendorOrderStatusCompleted,
	VendorOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (v VendorOrderStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorOrderStatus.
func (v VendorOrderStatus) IsValid() bool {
	for _, candidate := range validVendorOrderStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorOrderStatus converts raw input into a VendorOrderStatus.
func ParseVendorOrderStatus(value string) (VendorOrderStatus, error) {
	for _, candidate := range validVendorOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor order status %q", value)
}
