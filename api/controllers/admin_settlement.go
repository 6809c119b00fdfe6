package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/api/validators"
	"github.com/malpra/marketplace-backend/internal/reporting"
	"github.com/malpra/marketplace-backend/internal/settlement"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

// AdminGeneratePeriodPayouts creates DUE payouts for every vendor with
// completed orders placed inside the requested window. period_end is an
// inclusive calendar date.
func AdminGeneratePeriodPayouts(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		period, err := decodePeriodRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GeneratePeriodPayouts(r.Context(), period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// AdminGenerateOnlinePayouts creates DUE payouts for every gateway-settled
// vendor order not yet consumed by a payout, regardless of date.
func AdminGenerateOnlinePayouts(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		summary, err := svc.GenerateOnlinePayouts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

// AdminPreviewPeriodPayouts reports what a period run would pay without
// writing anything.
func AdminPreviewPeriodPayouts(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		period, err := decodePeriodRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.PreviewPeriod(r.Context(), period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminListPayouts lists payouts with optional vendor and status filters.
func AdminListPayouts(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		filters := settlement.PayoutFilters{}
		vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.VendorID = vendorID

		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParsePayoutStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		payouts, err := svc.ListPayouts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]payoutResponse, 0, len(payouts))
		for i := range payouts {
			items = append(items, newPayoutResponse(&payouts[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminSetPayoutStatus moves a payout between DUE, PAID and HOLD.
func AdminSetPayoutStatus(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		payoutID, err := pathUUID(r, "payoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload payoutStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePayoutStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout status"))
			return
		}

		payout, err := svc.SetPayoutStatus(r.Context(), payoutID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPayoutResponse(payout))
	}
}

// AdminSettleCODCommission acknowledges commission remittance on cash-collected
// orders, for one vendor or for every vendor when no vendor_id is sent.
func AdminSettleCODCommission(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		var payload codSettlementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SettleCODCommission(r.Context(), payload.VendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminListUnsettledCOD lists delivered COD vendor orders whose commission is
// still outstanding, optionally for one vendor.
func AdminListUnsettledCOD(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListUnsettledCOD(r.Context(), vendorID)
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

// AdminDuesSummary reports the platform-wide outstanding position: net owed
// to vendors and COD commission owed by them.
func AdminDuesSummary(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reporting service unavailable"))
			return
		}

		summary, err := svc.DuesSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type periodRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

type payoutStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type codSettlementRequest struct {
	VendorID *uuid.UUID `json:"vendor_id"`
}

type payoutResponse struct {
	PayoutID    uuid.UUID            `json:"payout_id"`
	VendorID    uuid.UUID            `json:"vendor_id"`
	AmountCents int                  `json:"amount_cents"`
	Status      string               `json:"status"`
	PeriodStart time.Time            `json:"period_start"`
	PeriodEnd   time.Time            `json:"period_end"`
	Items       []payoutItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type payoutItemResponse struct {
	VendorOrderID uuid.UUID `json:"vendor_order_id"`
	AmountCents   int       `json:"amount_cents"`
}

func decodePeriodRequest(r *http.Request) (settlement.Period, error) {
	var payload periodRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return settlement.Period{}, err
	}
	return settlement.Period{Start: payload.PeriodStart, End: payload.PeriodEnd}, nil
}

func newPayoutResponse(payout *models.Payout) payoutResponse {
	if payout == nil {
		return payoutResponse{}
	}
	items := make([]payoutItemResponse, 0, len(payout.Items))
	for _, item := range payout.Items {
		items = append(items, payoutItemResponse{
			VendorOrderID: item.VendorOrderID,
			AmountCents:   item.AmountCents,
		})
	}
	return payoutResponse{
		PayoutID:    payout.ID,
		VendorID:    payout.VendorID,
		AmountCents: payout.AmountCents,
		Status:      string(payout.Status),
		PeriodStart: payout.PeriodStart,
		PeriodEnd:   payout.PeriodEnd,
		Items:       items,
		CreatedAt:   payout.CreatedAt,
	}
}
