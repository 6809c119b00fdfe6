package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/api/middleware"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/malpra/marketplace-backend/pkg/errors"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return userID, nil
}

// vendorForRequest resolves the caller's vendor record from the database on
// every request, so a stale token can never act for a reassigned shop.
func vendorForRequest(r *http.Request, svc vendors.Service) (*models.Vendor, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return nil, err
	}
	vendor, err := svc.GetByOwner(r.Context(), userID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor account required")
		}
		return nil, err
	}
	return vendor, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": param})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}
