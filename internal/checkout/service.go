package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/internal/catalog"
	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes order placement.
type Service interface {
	PlaceOrder(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
}

type service struct {
	tx          txRunner
	ordersRepo  orders.Repository
	catalogRepo catalog.Repository
	vendorsRepo vendors.Repository
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	catalogRepo catalog.Repository,
	vendorsRepo vendors.Repository,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if vendorsRepo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	return &service{
		tx:          tx,
		ordersRepo:  ordersRepo,
		catalogRepo: catalogRepo,
		vendorsRepo: vendorsRepo,
	}, nil
}

type pricedLine struct {
	line       CartLine
	product    *models.Product
	priceCents int
}

// PlaceOrder snapshots prices, decrements stock, fans the cart out into one
// vendor order per vendor with the commission rate in force, and records the
// payment intent for gateway orders. Everything happens in one transaction:
// a single out-of-stock line aborts the whole placement.
func (s *service) PlaceOrder(ctx context.Context, buyerID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order contains no items")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	for _, line := range input.Items {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)
		vendorsRepo := s.vendorsRepo.WithTx(tx)

		productCache := map[uuid.UUID]*models.Product{}
		priced := make([]pricedLine, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := s.loadProduct(ctx, catalogRepo, line.ProductID, productCache)
			if err != nil {
				return err
			}
			if !product.Active {
				return pkgerrors.New(pkgerrors.CodeItemUnavailable, fmt.Sprintf("product %q is not available", product.Title)).
					WithDetails(map[string]any{"product_id": product.ID})
			}

			price := product.PriceCents
			if line.VariantID != nil {
				variant, err := catalogRepo.FindVariant(ctx, line.ProductID, *line.VariantID)
				if err != nil {
					return err
				}
				price += variant.PriceDeltaCents
			}
			if price < 0 {
				return pkgerrors.New(pkgerrors.CodeItemUnavailable, fmt.Sprintf("product %q is not available", product.Title)).
					WithDetails(map[string]any{"product_id": product.ID})
			}

			if err := catalogRepo.DecrementStock(ctx, line.ProductID, line.Qty); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
					return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %q", product.Title)).
						WithDetails(map[string]any{"product_id": product.ID, "requested": line.Qty})
				}
				return err
			}

			priced = append(priced, pricedLine{line: line, product: product, priceCents: price})
		}

		grouped := map[uuid.UUID][]pricedLine{}
		for _, pl := range priced {
			grouped[pl.product.VendorID] = append(grouped[pl.product.VendorID], pl)
		}

		vendorIDs := make([]uuid.UUID, 0, len(grouped))
		for vendorID := range grouped {
			vendorIDs = append(vendorIDs, vendorID)
		}
		vendorRecords, err := vendorsRepo.FindByIDs(ctx, vendorIDs)
		if err != nil {
			return err
		}
		vendorsByID := make(map[uuid.UUID]models.Vendor, len(vendorRecords))
		for _, vendor := range vendorRecords {
			vendorsByID[vendor.ID] = vendor
		}
		for _, vendorID := range vendorIDs {
			vendor, ok := vendorsByID[vendorID]
			if !ok || !vendor.IsApproved {
				return pkgerrors.New(pkgerrors.CodeItemUnavailable, "vendor not available").
					WithDetails(map[string]any{"vendor_id": vendorID})
			}
		}

		totalCents := 0
		for _, pl := range priced {
			totalCents += pl.priceCents * pl.line.Qty
		}

		address := input.ShippingAddress
		order, err := ordersRepo.CreateOrder(ctx, &models.Order{
			BuyerID:         buyerID,
			Status:          enums.OrderStatusPending,
			TotalCents:      totalCents,
			PaymentMethod:   input.PaymentMethod,
			ShippingAddress: &address,
		})
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(priced))
		for _, pl := range priced {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				ProductID:  pl.line.ProductID,
				VariantID:  pl.line.VariantID,
				Qty:        pl.line.Qty,
				PriceCents: pl.priceCents,
			})
		}
		if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		for _, vendorID := range vendorIDs {
			subtotal := 0
			for _, pl := range grouped[vendorID] {
				subtotal += pl.priceCents * pl.line.Qty
			}
			_, err := ordersRepo.CreateVendorOrder(ctx, &models.VendorOrder{
				OrderID:       order.ID,
				VendorID:      vendorID,
				SubtotalCents: subtotal,
				CommissionPct: vendorsByID[vendorID].CommissionPct,
				Status:        enums.VendorOrderStatusPending,
			})
			if err != nil {
				return err
			}
		}

		if input.PaymentMethod == enums.PaymentMethodHelaPay {
			_, err := ordersRepo.CreatePayment(ctx, &models.Payment{
				OrderID:     order.ID,
				Method:      enums.PaymentMethodHelaPay,
				Gateway:     "helapay",
				AmountCents: totalCents,
				Status:      enums.PaymentStatusInitiated,
			})
			if err != nil {
				return err
			}
		}

		result, err = ordersRepo.FindOrderByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadProduct(ctx context.Context, repo catalog.Repository, productID uuid.UUID, cache map[uuid.UUID]*models.Product) (*models.Product, error) {
	if product, ok := cache[productID]; ok {
		return product, nil
	}
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cache[productID] = product
	return product, nil
}
