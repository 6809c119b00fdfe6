package orders

import (
	"time"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// VendorOrderFilters describe the inputs supported by the vendor orders list.
type VendorOrderFilters struct {
	Status   *enums.VendorOrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}
