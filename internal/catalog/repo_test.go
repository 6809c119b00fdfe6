package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		VendorID:   uuid.New(),
		Title:      "Ceylon Tea 500g",
		PriceCents: 2500,
		Stock:      stock,
		Active:     true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestDecrementStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 5)

	if err := repo.DecrementStock(ctx, product.ID, 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("stock = %d, want 2", got.Stock)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 2)

	err := repo.DecrementStock(ctx, product.ID, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("stock mutated to %d on failed decrement", got.Stock)
	}
}

func TestDecrementStockInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, 2)

	err := repo.DecrementStock(context.Background(), product.ID, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindByIDPreloadsVariants(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	product := seedProduct(t, db, 10)

	variant := &models.ProductVariant{
		ID:              uuid.New(),
		ProductID:       product.ID,
		Name:            "1kg",
		PriceDeltaCents: 1500,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	got, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if len(got.Variants) != 1 || got.Variants[0].Name != "1kg" {
		t.Fatalf("unexpected variants: %+v", got.Variants)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); pkgerrors.As(err) == nil {
		t.Fatalf("expected typed not-found error, got %v", err)
	}
}
