package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/api/validators"
	checkoutsvc "github.com/malpra/marketplace-backend/internal/checkout"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
	"github.com/malpra/marketplace-backend/pkg/types"
)

// Checkout places an order from the submitted cart lines.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.CartLine, 0, len(payload.Items))
		for _, line := range payload.Items {
			items = append(items, checkoutsvc.CartLine{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Qty:       line.Qty,
			})
		}

		order, err := svc.PlaceOrder(r.Context(), buyerID, checkoutsvc.PlaceOrderInput{
			Items:           items,
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

type checkoutRequest struct {
	Items           []checkoutLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string                `json:"payment_method" validate:"required,oneof=COD HELAPAY"`
	ShippingAddress types.Address         `json:"shipping_address" validate:"required"`
}

type checkoutLineRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Qty       int        `json:"qty" validate:"required,min=1"`
}
