package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/webqianduansong/shn-jade-backend/api/middleware"
	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/cart"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

// Cart handlers serve both identities behind OptionalAuth: authenticated
// requests hit the database cart, anonymous ones live entirely in the
// cart cookie.

type cartAddRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func cartDeps(svc cart.Service, codec *cart.CookieCodec) error {
	if svc == nil || codec == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
	}
	return nil
}

// CartFetch returns the enriched cart for the caller's identity.
func CartFetch(svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartDeps(svc, codec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locale := resolveLocale(r)
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID != uuid.Nil {
			dto, err := svc.Get(r.Context(), userID, locale)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, dto)
			return
		}

		dto, err := svc.Enrich(r.Context(), codec.Read(r), locale)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CartAdd adds quantity for a product and returns the updated cart.
func CartAdd(svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartDeps(svc, codec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(body.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locale := resolveLocale(r)
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID != uuid.Nil {
			if err := svc.Add(r.Context(), userID, productID, body.Quantity); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			respondUserCart(w, r, svc, logg, userID, locale)
			return
		}

		items := cart.AddItem(codec.Read(r), productID, body.Quantity)
		respondCookieCart(w, r, svc, codec, logg, items, locale)
	}
}

// CartUpdate sets the quantity for a product line; zero removes it.
func CartUpdate(svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartDeps(svc, codec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locale := resolveLocale(r)
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID != uuid.Nil {
			if err := svc.Update(r.Context(), userID, productID, body.Quantity); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			respondUserCart(w, r, svc, logg, userID, locale)
			return
		}

		items := cart.SetItem(codec.Read(r), productID, body.Quantity)
		respondCookieCart(w, r, svc, codec, logg, items, locale)
	}
}

// CartRemove drops a product line entirely.
func CartRemove(svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartDeps(svc, codec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locale := resolveLocale(r)
		userID := middleware.UserUUIDFromContext(r.Context())
		if userID != uuid.Nil {
			if err := svc.Remove(r.Context(), userID, productID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			respondUserCart(w, r, svc, logg, userID, locale)
			return
		}

		items := cart.RemoveItem(codec.Read(r), productID)
		respondCookieCart(w, r, svc, codec, logg, items, locale)
	}
}

// CartClear empties the cart for the caller's identity.
func CartClear(svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cartDeps(svc, codec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		if userID != uuid.Nil {
			if err := svc.Clear(r.Context(), userID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			codec.Clear(w)
		}
		responses.WriteSuccess(w, &cart.CartDTO{Lines: []cart.LineDTO{}})
	}
}

func respondUserCart(w http.ResponseWriter, r *http.Request, svc cart.Service, logg *logger.Logger, userID uuid.UUID, locale string) {
	dto, err := svc.Get(r.Context(), userID, locale)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, dto)
}

func respondCookieCart(w http.ResponseWriter, r *http.Request, svc cart.Service, codec *cart.CookieCodec, logg *logger.Logger, items []cart.Item, locale string) {
	if err := codec.Write(w, items); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	dto, err := svc.Enrich(r.Context(), items, locale)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, dto)
}
