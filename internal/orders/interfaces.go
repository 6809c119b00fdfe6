package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
)

// Repository defines persistence operations for orders, vendor orders and
// payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateVendorOrder(ctx context.Context, vo *models.VendorOrder) (*models.VendorOrder, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	FindVendorOrder(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
	FindVendorOrdersByOrder(ctx context.Context, orderID uuid.UUID) ([]models.VendorOrder, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters VendorOrderFilters) ([]models.VendorOrder, error)
	UpdateVendorOrderStatus(ctx context.Context, id uuid.UUID, status enums.VendorOrderStatus) error
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	MarkPaymentOutcome(ctx context.Context, orderID uuid.UUID, updates map[string]any) (int64, error)
}

// Service exposes order queries and fulfillment transitions.
type Service interface {
	GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters VendorOrderFilters) ([]models.VendorOrder, error)
	UpdateFulfillment(ctx context.Context, vendorID, vendorOrderID uuid.UUID, status enums.VendorOrderStatus) (*models.VendorOrder, error)
}
