package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
	"github.com/malpra/marketplace-backend/pkg/types"
)

// Order is the buyer-level order. TotalCents is a snapshot computed at
// placement and never recomputed; it equals the sum of the item snapshots and
// the sum of the vendor-order subtotals.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'COD'"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	VendorOrders    []VendorOrder       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one cart line with its immutable price snapshot.
type OrderItem struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID  *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Qty        int        `gorm:"column:qty;not null"`
	PriceCents int        `gorm:"column:price_cents;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
