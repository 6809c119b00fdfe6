package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// Payout is a platform-to-vendor payment batch covering a date period.
// Only Status mutates after creation.
type Payout struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	VendorID    uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null;index"`
	AmountCents int                `gorm:"column:amount_cents;not null"`
	Status      enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'DUE'"`
	PeriodStart time.Time          `gorm:"column:period_start;not null"`
	PeriodEnd   time.Time          `gorm:"column:period_end;not null"`
	Items       []PayoutItem       `gorm:"foreignKey:PayoutID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// PayoutItem attributes part of a payout to one vendor order. The unique
// index on vendor_order_id is the no-double-pay guard: a vendor order can be
// consumed by at most one payout, ever.
type PayoutItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	PayoutID      uuid.UUID `gorm:"column:payout_id;type:uuid;not null;index"`
	VendorOrderID uuid.UUID `gorm:"column:vendor_order_id;type:uuid;not null;uniqueIndex"`
	AmountCents   int       `gorm:"column:amount_cents;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
