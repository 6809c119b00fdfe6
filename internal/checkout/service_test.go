package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/internal/catalog"
	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db  *gorm.DB
	svc Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Vendor{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.VendorOrder{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(
		gormTxRunner{db: db},
		orders.NewRepository(db),
		catalog.NewRepository(db),
		vendors.NewRepository(db),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{db: db, svc: svc}
}

func (f *fixture) seedVendor(t *testing.T, commissionPct int, approved bool) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:            uuid.New(),
		OwnerUserID:   uuid.New(),
		ShopName:      "Shop " + uuid.NewString()[:8],
		Slug:          "shop-" + uuid.NewString()[:8],
		CommissionPct: commissionPct,
		IsApproved:    approved,
	}
	if err := f.db.Create(vendor).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return vendor
}

func (f *fixture) seedProduct(t *testing.T, vendorID uuid.UUID, priceCents, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		VendorID:   vendorID,
		Title:      "Item " + uuid.NewString()[:8],
		PriceCents: priceCents,
		Stock:      stock,
		Active:     true,
	}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func testAddress() types.Address {
	return types.Address{
		Name:    "Nimal Perera",
		Phone:   "+94771234567",
		Line1:   "12 Galle Road",
		City:    "Colombo",
		Postal:  "00300",
		Country: "LK",
	}
}

func TestPlaceOrderFansOutPerVendor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	buyerID := uuid.New()

	vendorA := f.seedVendor(t, 10, true)
	vendorB := f.seedVendor(t, 15, true)
	productA := f.seedProduct(t, vendorA.ID, 2500, 10)
	productB := f.seedProduct(t, vendorB.ID, 4000, 5)

	order, err := f.svc.PlaceOrder(ctx, buyerID, PlaceOrderInput{
		Items: []CartLine{
			{ProductID: productA.ID, Qty: 2},
			{ProductID: productB.ID, Qty: 1},
		},
		PaymentMethod:   enums.PaymentMethodHelaPay,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.TotalCents != 9000 {
		t.Fatalf("total = %d, want 9000", order.TotalCents)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if len(order.VendorOrders) != 2 {
		t.Fatalf("vendor orders = %d, want 2", len(order.VendorOrders))
	}

	subtotalSum := 0
	for _, vo := range order.VendorOrders {
		subtotalSum += vo.SubtotalCents
		switch vo.VendorID {
		case vendorA.ID:
			if vo.SubtotalCents != 5000 || vo.CommissionPct != 10 {
				t.Fatalf("vendor A split: %+v", vo)
			}
		case vendorB.ID:
			if vo.SubtotalCents != 4000 || vo.CommissionPct != 15 {
				t.Fatalf("vendor B split: %+v", vo)
			}
		default:
			t.Fatalf("unexpected vendor id %s", vo.VendorID)
		}
	}
	if subtotalSum != order.TotalCents {
		t.Fatalf("subtotal sum %d != total %d", subtotalSum, order.TotalCents)
	}

	if order.Payment == nil || order.Payment.Status != enums.PaymentStatusInitiated {
		t.Fatalf("expected INITIATED payment, got %+v", order.Payment)
	}
	if order.Payment.AmountCents != order.TotalCents {
		t.Fatalf("payment amount %d != total %d", order.Payment.AmountCents, order.TotalCents)
	}

	var gotA models.Product
	if err := f.db.First(&gotA, "id = ?", productA.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if gotA.Stock != 8 {
		t.Fatalf("stock = %d, want 8", gotA.Stock)
	}
}

func TestPlaceOrderCODCreatesNoPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	vendor := f.seedVendor(t, 10, true)
	product := f.seedProduct(t, vendor.ID, 1000, 3)

	order, err := f.svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items:           []CartLine{{ProductID: product.ID, Qty: 1}},
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.Payment != nil {
		t.Fatalf("expected no payment row for COD, got %+v", order.Payment)
	}
}

func TestPlaceOrderAppliesVariantDelta(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	vendor := f.seedVendor(t, 10, true)
	product := f.seedProduct(t, vendor.ID, 2000, 5)
	variant := &models.ProductVariant{
		ID:              uuid.New(),
		ProductID:       product.ID,
		Name:            "large",
		PriceDeltaCents: 500,
	}
	if err := f.db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	order, err := f.svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items:           []CartLine{{ProductID: product.ID, VariantID: &variant.ID, Qty: 2}},
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.TotalCents != 5000 {
		t.Fatalf("total = %d, want 5000", order.TotalCents)
	}
	if order.Items[0].PriceCents != 2500 {
		t.Fatalf("item price = %d, want 2500", order.Items[0].PriceCents)
	}
}

func TestPlaceOrderInsufficientStockAbortsEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	vendor := f.seedVendor(t, 10, true)
	plentiful := f.seedProduct(t, vendor.ID, 1000, 10)
	scarce := f.seedProduct(t, vendor.ID, 1000, 1)

	_, err := f.svc.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
		Items: []CartLine{
			{ProductID: plentiful.ID, Qty: 2},
			{ProductID: scarce.ID, Qty: 5},
		},
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), scarce.Title) {
		t.Fatalf("error %q does not name the product", err)
	}

	var got models.Product
	if err := f.db.First(&got, "id = ?", plentiful.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 10 {
		t.Fatalf("stock = %d, want 10 after rollback", got.Stock)
	}

	var count int64
	if err := f.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("orders = %d, want 0", count)
	}
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	vendor := f.seedVendor(t, 10, true)
	product := f.seedProduct(t, vendor.ID, 1000, 1)

	// One connection serializes the two transactions without weakening the
	// conditional decrement they race on.
	sqlDB, err := f.db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
				Items:           []CartLine{{ProductID: product.ID, Qty: 1}},
				PaymentMethod:   enums.PaymentMethodCOD,
				ShippingAddress: testAddress(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
			t.Fatalf("unexpected error: %v", err)
		}
		lost++
	}
	if won != 1 || lost != 1 {
		t.Fatalf("won = %d, lost = %d, want exactly one of each", won, lost)
	}

	var got models.Product
	if err := f.db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("stock = %d, want 0", got.Stock)
	}
	var count int64
	if err := f.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 1 {
		t.Fatalf("orders = %d, want 1", count)
	}
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	vendor := f.seedVendor(t, 10, true)
	product := f.seedProduct(t, vendor.ID, 1000, 5)
	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := f.svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items:           []CartLine{{ProductID: product.ID, Qty: 1}},
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeItemUnavailable {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), product.Title) {
		t.Fatalf("error %q does not name the product", err)
	}
}

func TestPlaceOrderRejectsUnapprovedVendor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	vendor := f.seedVendor(t, 10, false)
	product := f.seedProduct(t, vendor.ID, 1000, 5)

	_, err := f.svc.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items:           []CartLine{{ProductID: product.ID, Qty: 1}},
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeItemUnavailable {
		t.Fatalf("unexpected error: %v", err)
	}

	var got models.Product
	if err := f.db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("stock = %d, want 5 after rollback", got.Stock)
	}
}

func TestPlaceOrderValidatesInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		buyer uuid.UUID
		input PlaceOrderInput
	}{
		{"empty cart", uuid.New(), PlaceOrderInput{PaymentMethod: enums.PaymentMethodCOD}},
		{"nil buyer", uuid.Nil, PlaceOrderInput{Items: []CartLine{{ProductID: uuid.New(), Qty: 1}}, PaymentMethod: enums.PaymentMethodCOD}},
		{"bad method", uuid.New(), PlaceOrderInput{Items: []CartLine{{ProductID: uuid.New(), Qty: 1}}, PaymentMethod: enums.PaymentMethod("CRYPTO")}},
		{"zero qty", uuid.New(), PlaceOrderInput{Items: []CartLine{{ProductID: uuid.New(), Qty: 0}}, PaymentMethod: enums.PaymentMethodCOD}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, tc.buyer, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
