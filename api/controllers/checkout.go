package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/api/middleware"
	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/cart"
	checkoutsvc "github.com/webqianduansong/shn-jade-backend/internal/checkout"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID string `json:"address_id" validate:"omitempty,uuid"`
}

// Checkout snapshots the caller's cart into a pending order and returns the
// hosted payment session to redirect to. Requires an authenticated session;
// anonymous carts go through login first so the merge picks them up.
func Checkout(svc checkoutsvc.Service, carts cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var addressID *uuid.UUID
		if body.AddressID != "" {
			id, err := validators.ParsePathUUID(body.AddressID, "address_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			addressID = &id
		}

		items, err := carts.Snapshot(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		result, err := svc.Checkout(r.Context(), checkoutsvc.Input{
			UserID:    userID,
			Items:     items,
			AddressID: addressID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
