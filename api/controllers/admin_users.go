package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/users"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
	"github.com/webqianduansong/shn-jade-backend/pkg/pagination"
)

type adminSetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminListUsers returns customer accounts newest-first.
func AdminListUsers(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}
		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users"))
			return
		}
		responses.WriteSuccess(w, users.PageFromModels(rows, pagination.NormalizeLimit(params.Limit)))
	}
}

// AdminSetUserActive activates or deactivates an account. Deactivated users
// keep their rows; they just cannot log in.
func AdminSetUserActive(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adminSetActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.SetActive(r.Context(), userID, *body.Active); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": *body.Active})
	}
}
