package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
)

// Repository defines persistence operations for the product catalog. Checkout
// is the only writer and only through DecrementStock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}
