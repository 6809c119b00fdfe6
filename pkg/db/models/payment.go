package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// Payment is the gateway payment record, one per order. Raw stores the last
// gateway notification verbatim for reconciliation.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Method      enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Gateway     string              `gorm:"column:gateway;not null"`
	AmountCents int                 `gorm:"column:amount_cents;not null"`
	Status      enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'INITIATED'"`
	ExternalRef *string             `gorm:"column:external_ref"`
	Raw         json.RawMessage     `gorm:"column:raw;type:jsonb"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
