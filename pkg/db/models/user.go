package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
)

// User is the account record. Authentication lives outside this service; the
// model is carried because gateway checkout needs the buyer's contact fields.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.Role `gorm:"column:role;type:text;not null;default:'BUYER'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
