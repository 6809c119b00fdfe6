package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.VendorOrder{},
		&models.Payment{},
	))
	return db
}

func seedOrderWithVendorOrders(t *testing.T, repo Repository, vendorIDs ...uuid.UUID) *models.Order {
	t.Helper()
	ctx := context.Background()

	order, err := repo.CreateOrder(ctx, &models.Order{
		BuyerID:       uuid.New(),
		Status:        enums.OrderStatusPending,
		TotalCents:    10000,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	for _, vendorID := range vendorIDs {
		_, err := repo.CreateVendorOrder(ctx, &models.VendorOrder{
			OrderID:       order.ID,
			VendorID:      vendorID,
			SubtotalCents: 5000,
			CommissionPct: 10,
			Status:        enums.VendorOrderStatusPending,
		})
		require.NoError(t, err)
	}
	return order
}

func TestCreateAndFindOrder(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	vendorID := uuid.New()
	order := seedOrderWithVendorOrders(t, repo, vendorID)

	require.NoError(t, repo.CreateOrderItems(ctx, []models.OrderItem{
		{OrderID: order.ID, ProductID: uuid.New(), Qty: 2, PriceCents: 2500},
		{OrderID: order.ID, ProductID: uuid.New(), Qty: 1, PriceCents: 5000},
	}))

	got, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	require.Len(t, got.VendorOrders, 1)
	assert.Equal(t, vendorID, got.VendorOrders[0].VendorID)

	_, err = repo.FindOrderByID(ctx, uuid.New())
	require.NotNil(t, pkgerrors.As(err), "expected typed not-found, got %v", err)
}

func TestListVendorOrdersFilters(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	vendorID := uuid.New()

	order := seedOrderWithVendorOrders(t, repo, vendorID, uuid.New())

	all, err := repo.ListVendorOrders(ctx, vendorID, VendorOrderFilters{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Order, "expected preloaded parent order")
	assert.Equal(t, order.ID, all[0].Order.ID)

	shipped := enums.VendorOrderStatusShipped
	filtered, err := repo.ListVendorOrders(ctx, vendorID, VendorOrderFilters{Status: &shipped})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	future := time.Now().Add(time.Hour)
	dated, err := repo.ListVendorOrders(ctx, vendorID, VendorOrderFilters{DateFrom: &future})
	require.NoError(t, err)
	assert.Empty(t, dated)
}

func TestUpdatePaymentByOrder(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	order := seedOrderWithVendorOrders(t, repo, uuid.New())

	_, err := repo.CreatePayment(ctx, &models.Payment{
		OrderID:     order.ID,
		Method:      enums.PaymentMethodHelaPay,
		Gateway:     "helapay",
		AmountCents: order.TotalCents,
		Status:      enums.PaymentStatusInitiated,
	})
	require.NoError(t, err)

	ref := "HP-12345"
	require.NoError(t, repo.UpdatePayment(ctx, order.ID, map[string]any{
		"status":       enums.PaymentStatusPaid,
		"external_ref": ref,
	}))

	payment, err := repo.FindPaymentByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.ExternalRef)
	assert.Equal(t, ref, *payment.ExternalRef)
}

func TestMarkPaymentOutcomeNeverRegressesPaid(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	order := seedOrderWithVendorOrders(t, repo, uuid.New())

	_, err := repo.CreatePayment(ctx, &models.Payment{
		OrderID:     order.ID,
		Method:      enums.PaymentMethodHelaPay,
		Gateway:     "helapay",
		AmountCents: order.TotalCents,
		Status:      enums.PaymentStatusInitiated,
	})
	require.NoError(t, err)

	applied, err := repo.MarkPaymentOutcome(ctx, order.ID, map[string]any{
		"status": enums.PaymentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)

	// A stale failure arriving after capture touches nothing.
	applied, err = repo.MarkPaymentOutcome(ctx, order.ID, map[string]any{
		"status": enums.PaymentStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), applied)

	payment, err := repo.FindPaymentByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, payment.Status)
}
