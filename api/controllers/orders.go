package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
	"github.com/malpra/marketplace-backend/pkg/types"
)

// BuyerOrderList returns the caller's orders, newest first.
func BuyerOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListBuyerOrders(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(records))
		for i := range records {
			items = append(items, newOrderResponse(&records[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// BuyerOrderDetail returns one of the caller's orders with its items, vendor
// splits and payment state.
func BuyerOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetBuyerOrder(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderResponse struct {
	OrderID         uuid.UUID             `json:"order_id"`
	Status          string                `json:"status"`
	TotalCents      int                   `json:"total_cents"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingAddress *types.Address        `json:"shipping_address,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Items           []orderItemResponse   `json:"items,omitempty"`
	VendorOrders    []vendorOrderResponse `json:"vendor_orders,omitempty"`
	Payment         *paymentResponse      `json:"payment,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

type orderItemResponse struct {
	ItemID     uuid.UUID  `json:"item_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	Qty        int        `json:"qty"`
	PriceCents int        `json:"price_cents"`
}

type vendorOrderResponse struct {
	VendorOrderID uuid.UUID `json:"vendor_order_id"`
	VendorID      uuid.UUID `json:"vendor_id"`
	Status        string    `json:"status"`
	SubtotalCents int       `json:"subtotal_cents"`
	CommissionPct int       `json:"commission_pct"`
	CreatedAt     time.Time `json:"created_at"`
}

type paymentResponse struct {
	Status      string  `json:"status"`
	Gateway     string  `json:"gateway"`
	AmountCents int     `json:"amount_cents"`
	ExternalRef *string `json:"external_ref,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}

	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:     item.ID,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Qty:        item.Qty,
			PriceCents: item.PriceCents,
		})
	}

	vendorOrders := make([]vendorOrderResponse, 0, len(order.VendorOrders))
	for _, vo := range order.VendorOrders {
		vendorOrders = append(vendorOrders, newVendorOrderResponse(&vo))
	}

	resp := orderResponse{
		OrderID:         order.ID,
		Status:          string(order.Status),
		TotalCents:      order.TotalCents,
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		PaidAt:          order.PaidAt,
		Items:           items,
		VendorOrders:    vendorOrders,
		CreatedAt:       order.CreatedAt,
	}
	if order.Payment != nil {
		resp.Payment = &paymentResponse{
			Status:      string(order.Payment.Status),
			Gateway:     order.Payment.Gateway,
			AmountCents: order.Payment.AmountCents,
			ExternalRef: order.Payment.ExternalRef,
		}
	}
	return resp
}

func newVendorOrderResponse(vo *models.VendorOrder) vendorOrderResponse {
	if vo == nil {
		return vendorOrderResponse{}
	}
	return vendorOrderResponse{
		VendorOrderID: vo.ID,
		VendorID:      vo.VendorID,
		Status:        string(vo.Status),
		SubtotalCents: vo.SubtotalCents,
		CommissionPct: vo.CommissionPct,
		CreatedAt:     vo.CreatedAt,
	}
}
