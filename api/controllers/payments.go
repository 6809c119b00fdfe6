package controllers

import (
	"net/http"

	"github.com/malpra/marketplace-backend/api/middleware"
	"github.com/malpra/marketplace-backend/api/responses"
	"github.com/malpra/marketplace-backend/internal/payments/helapay"
	"github.com/malpra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
	"github.com/malpra/marketplace-backend/pkg/logger"
)

// HelaPayCheckout builds the signed hosted-checkout payload for one of the
// caller's gateway orders. The client posts the returned fields to the
// gateway's checkout URL.
func HelaPayCheckout(svc helapay.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
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

		role := enums.Role(middleware.RoleFromContext(r.Context()))
		session, err := svc.InitCheckout(r.Context(), buyerID, role, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
