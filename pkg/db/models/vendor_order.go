package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// VendorOrder is the per-vendor partition of an order. SubtotalCents and
// CommissionPct are snapshots taken at placement; later price or rate edits
// never touch them. CODCommissionSettledAt marks that the vendor remitted the
// commission on a cash sale out-of-band; it is a flag, not a money movement.
type VendorOrder struct {
	ID                     uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID                uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	VendorID               uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	SubtotalCents          int                     `gorm:"column:subtotal_cents;not null"`
	CommissionPct          int                     `gorm:"column:commission_pct;not null"`
	Status                 enums.VendorOrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	CODCommissionSettledAt *time.Time              `gorm:"column:cod_commission_settled_at"`
	Order                  *Order                  `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt              time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
