package controllers

import (
	"net/http"
	"time"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/api/validators"
	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/internal/reporting"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

// VendorOrderList returns the caller's vendor orders with optional status and
// date filters.
func VendorOrderList(ordersSvc orders.Service, vendorsSvc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersSvc == nil || vendorsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendor, err := vendorForRequest(r, vendorsSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := orders.VendorOrderFilters{}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseVendorOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if filters.DateFrom, err = validators.ParseQueryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := ordersSvc.ListVendorOrders(r.Context(), vendor.ID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]vendorOrderResponse, 0, len(records))
		for i := range records {
			items = append(items, newVendorOrderResponse(&records[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// VendorOrderUpdateStatus advances one of the caller's vendor orders through
// the fulfillment pipeline.
func VendorOrderUpdateStatus(ordersSvc orders.Service, vendorsSvc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersSvc == nil || vendorsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendor, err := vendorForRequest(r, vendorsSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorOrderID, err := pathUUID(r, "vendorOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vendorOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseVendorOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
			return
		}

		vo, err := ordersSvc.UpdateFulfillment(r.Context(), vendor.ID, vendorOrderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVendorOrderResponse(vo))
	}
}

// VendorStatement returns the caller's settlement statement for a date window.
// The window defaults to the current calendar month.
func VendorStatement(reportingSvc reporting.Service, vendorsSvc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reportingSvc == nil || vendorsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reporting service unavailable"))
			return
		}

		vendor, err := vendorForRequest(r, vendorsSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, end := defaultStatementWindow(time.Now().UTC())
		if from != nil {
			start = *from
		}
		if to != nil {
			end = *to
		}

		stmt, err := reportingSvc.VendorStatement(r.Context(), vendor.ID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stmt)
	}
}

type vendorOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func defaultStatementWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
