package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a selling shop owned by one user. CommissionPct is the platform's
// cut for FUTURE orders only; each VendorOrder snapshots the rate in force
// when it was created.
type Vendor struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerUserID   uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	ShopName      string    `gorm:"column:shop_name;not null"`
	Slug          string    `gorm:"column:slug;not null;uniqueIndex"`
	CommissionPct int       `gorm:"column:commission_pct;not null;default:10"`
	IsApproved    bool      `gorm:"column:is_approved;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
