package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Not-found rather than forbidden: don't leak other buyers' order ids.
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	return s.repo.ListBuyerOrders(ctx, buyerID)
}

func (s *service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters VendorOrderFilters) ([]models.VendorOrder, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	return s.repo.ListVendorOrders(ctx, vendorID, filters)
}

// UpdateFulfillment moves a vendor order to the requested status on behalf of
// the owning vendor. Transitions are deliberately unconstrained in direction;
// vendors correct mistakes by moving the status again. After every transition
// the siblings are re-checked: when all of them are COMPLETED, the parent order
// is promoted to COMPLETED in the same transaction. Promotion is the only
// automatic order-level transition.
func (s *service) UpdateFulfillment(ctx context.Context, vendorID, vendorOrderID uuid.UUID, status enums.VendorOrderStatus) (*models.VendorOrder, error) {
	if vendorID == uuid.Nil || vendorOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id and vendor order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor order status")
	}

	var result *models.VendorOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		vo, err := repo.FindVendorOrder(ctx, vendorOrderID)
		if err != nil {
			return err
		}
		if vo.VendorID != vendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "vendor order belongs to another vendor")
		}
		if vo.Order != nil && vo.Order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "parent order cancelled")
		}

		if err := repo.UpdateVendorOrderStatus(ctx, vendorOrderID, status); err != nil {
			return err
		}
		if err := s.maybePromoteOrder(ctx, repo, vo.OrderID); err != nil {
			return err
		}

		result, err = repo.FindVendorOrder(ctx, vendorOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) maybePromoteOrder(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	siblings, err := repo.FindVendorOrdersByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.Status != enums.VendorOrderStatusCompleted {
			return nil
		}
	}
	return repo.UpdateOrder(ctx, orderID, map[string]any{"status": enums.OrderStatusCompleted})
}
