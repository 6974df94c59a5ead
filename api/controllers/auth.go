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

func setSessionCookie(w http.ResponseWriter, name, token string, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.ExpirationMinutes * 60,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthLogin authenticates a customer. The anonymous cookie cart is merged
// into the account cart on success, then the cart cookie is dropped.
func AuthLogin(svc auth.Service, carts *cart.CookieCodec, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var cookieItems []cart.Item
		if carts != nil {
			cookieItems = carts.Read(r)
		}

		result, err := svc.Login(r.Context(), body, cookieItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg.CookieName, result.AccessToken, cfg)
		if carts != nil && len(cookieItems) > 0 {
			carts.Clear(w)
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminAuthLogin authenticates back-office users on a separate cookie so an
// admin session never collides with a storefront one.
func AdminAuthLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg.AdminCookieName, result.AccessToken, cfg)
		responses.WriteSuccess(w, result)
	}
}
