package controllers

import (
	"net/http"

	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/api/validators"
	"github.com/webqianduansong/shn-jade-backend/internal/auth"
	"github.com/webqianduansong/shn-jade-backend/internal/cart"
	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	pkgerrors "github.com/webqianduansong/shn-jade-backend/pkg/errors"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

// AuthRegister creates a customer account and signs the new user in, so the
// storefront lands them in an authenticated session in one round trip.
func AuthRegister(reg auth.RegisterService, svc auth.Service, carts *cart.CookieCodec, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var cookieItems []cart.Item
		if carts != nil {
			cookieItems = carts.Read(r)
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password}, cookieItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg.CookieName, result.AccessToken, cfg)
		if carts != nil && len(cookieItems) > 0 {
			carts.Clear(w)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
