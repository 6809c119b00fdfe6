package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/api/validators"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

// AdminSetVendorCommission updates a vendor's commission rate. The new rate
// applies to future orders only; placed orders keep their snapshot.
func AdminSetVendorCommission(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		vendorID, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload commissionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.UpdateCommissionPct(r.Context(), vendorID, payload.CommissionPct)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVendorResponse(vendor))
	}
}

// AdminSetVendorApproval toggles whether a vendor can take orders.
func AdminSetVendorApproval(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		vendorID, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload approvalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.SetApproval(r.Context(), vendorID, *payload.Approved)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVendorResponse(vendor))
	}
}

type commissionRequest struct {
	CommissionPct int `json:"commission_pct" validate:"gte=0,lte=100"`
}

type approvalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type vendorResponse struct {
	VendorID      uuid.UUID `json:"vendor_id"`
	ShopName      string    `json:"shop_name"`
	Slug          string    `json:"slug"`
	CommissionPct int       `json:"commission_pct"`
	IsApproved    bool      `json:"is_approved"`
	CreatedAt     time.Time `json:"created_at"`
}

func newVendorResponse(vendor *models.Vendor) vendorResponse {
	if vendor == nil {
		return vendorResponse{}
	}
	return vendorResponse{
		VendorID:      vendor.ID,
		ShopName:      vendor.ShopName,
		Slug:          vendor.Slug,
		CommissionPct: vendor.CommissionPct,
		IsApproved:    vendor.IsApproved,
		CreatedAt:     vendor.CreatedAt,
	}
}
