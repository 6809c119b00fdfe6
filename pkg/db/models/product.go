package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is catalog state. This service reads it and performs exactly one
// write: the conditional stock decrement during order placement.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	VendorID   uuid.UUID        `gorm:"column:vendor_id;type:uuid;not null;index"`
	Title      string           `gorm:"column:title;not null"`
	PriceCents int              `gorm:"column:price_cents;not null"`
	Stock      int              `gorm:"column:stock;not null;default:0"`
	Active     bool             `gorm:"column:active;not null;default:true"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant adjusts the base price by a signed delta.
type ProductVariant struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	PriceDeltaCents int       `gorm:"column:price_delta_cents;not null;default:0"`
}
