package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.SiteURL = "http://localhost:3000"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "shn-jade"
	cfg.JWT.ExpirationMinutes = 30
	cfg.JWT.CookieName = "shn_session"
	cfg.JWT.AdminCookieName = "shn_admin_session"

	logg := logger.New(logger.Options{
		ServiceName: "router-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})

	return NewRouter(Deps{Config: cfg, Logger: logg})
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthLive(t *testing.T) {
	rec := get(t, testRouter(), "/health/live")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if env := rec.Header().Get("X-Jade-Env"); env != "test" {
		t.Fatalf("X-Jade-Env = %q", env)
	}
}

func TestRouterPublicRoutesResolve(t *testing.T) {
	router := testRouter()

	// With no services wired the controllers answer 500, which still
	// proves the route exists; a missing route would be 404.
	for _, path := range []string{
		"/api/v1/products",
		"/api/v1/categories",
		"/api/v1/banners",
		"/api/v1/cart",
	} {
		if rec := get(t, router, path); rec.Code == http.StatusNotFound {
			t.Errorf("%s is not routed", path)
		}
	}
}

func TestRouterProtectedRoutesRequireCredentials(t *testing.T) {
	router := testRouter()

	for _, path := range []string{
		"/api/v1/orders",
		"/api/v1/addresses",
		"/api/v1/me",
		"/api/admin/v1/orders",
		"/api/admin/v1/users",
		"/api/admin/v1/dashboard",
	} {
		if rec := get(t, router, path); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestRouterMetricsDisabledWithoutRegistry(t *testing.T) {
	if rec := get(t, testRouter(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	if rec := get(t, testRouter(), "/api/v1/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRouterRateLimitDisabledByDefault(t *testing.T) {
	// Zero-valued AuthRateLimitConfig must leave login reachable.
	router := testRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusNotFound || rec.Code == http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
}
