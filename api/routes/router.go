package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webqianduansong/shn-jade-backend/api/controllers"
	webhookcontrollers "github.com/webqianduansong/shn-jade-backend/api/controllers/webhooks"
	"github.com/webqianduansong/shn-jade-backend/api/middleware"
	"github.com/webqianduansong/shn-jade-backend/internal/address"
	"github.com/webqianduansong/shn-jade-backend/internal/auth"
	"github.com/webqianduansong/shn-jade-backend/internal/banners"
	"github.com/webqianduansong/shn-jade-backend/internal/cart"
	"github.com/webqianduansong/shn-jade-backend/internal/catalog"
	checkoutsvc "github.com/webqianduansong/shn-jade-backend/internal/checkout"
	"github.com/webqianduansong/shn-jade-backend/internal/dashboard"
	"github.com/webqianduansong/shn-jade-backend/internal/orders"
	"github.com/webqianduansong/shn-jade-backend/internal/users"
	stripewebhook "github.com/webqianduansong/shn-jade-backend/internal/webhooks/stripe"
	"github.com/webqianduansong/shn-jade-backend/pkg/auth/session"
	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	"github.com/webqianduansong/shn-jade-backend/pkg/db"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
	"github.com/webqianduansong/shn-jade-backend/pkg/metrics"
	pkgredis "github.com/webqianduansong/shn-jade-backend/pkg/redis"
	"github.com/webqianduansong/shn-jade-backend/pkg/stripe"
)

// Deps collects everything the HTTP surface needs. The router only wires
// middleware chains; business rules stay in the services.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *pkgredis.Client
	Sessions       session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	Registry       *prometheus.Registry
	AuthService    auth.Service
	Register       auth.RegisterService
	Catalog        catalog.Service
	Banners        banners.Service
	CartService    cart.Service
	CartCookies    *cart.CookieCodec
	Checkout       checkoutsvc.Service
	Orders         orders.Service
	Addresses      address.Service
	Dashboard      dashboard.Service
	Users          *users.Repository
	Stripe         *stripe.Client
	StripeWebhooks *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.SiteURL),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	customerAuth := middleware.Auth(cfg.JWT, cfg.JWT.CookieName, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, cfg.JWT.CookieName, deps.Sessions, logg)
	adminAuth := middleware.Auth(cfg.JWT, cfg.JWT.AdminCookieName, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhooks, deps.Stripe, deps.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, deps.CartCookies, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, deps.CartCookies, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, cfg.JWT, cfg.JWT.CookieName, logg))
		r.With(customerAuth).Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, cfg.JWT.CookieName, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AdminAuthLogin(deps.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, cfg.JWT, cfg.JWT.AdminCookieName, logg))
		r.With(adminAuth).Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, cfg.JWT.AdminCookieName, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{slug}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/banners", controllers.ListBanners(deps.Banners, logg))

		// The cart serves both identities: a signed-in user hits the
		// database cart, everyone else rides the cookie.
		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", controllers.CartFetch(deps.CartService, deps.CartCookies, logg))
			r.Post("/items", controllers.CartAdd(deps.CartService, deps.CartCookies, logg))
			r.Put("/items/{productID}", controllers.CartUpdate(deps.CartService, deps.CartCookies, logg))
			r.Delete("/items/{productID}", controllers.CartRemove(deps.CartService, deps.CartCookies, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, deps.CartCookies, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(customerAuth)

			r.Post("/checkout", controllers.Checkout(deps.Checkout, deps.CartService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.MyOrders(deps.Orders, logg))
				r.Get("/{orderNumber}", controllers.MyOrderDetail(deps.Orders, logg))
				r.Post("/{orderNumber}/cancel", controllers.CancelOrder(deps.Orders, logg))
				r.Post("/{orderNumber}/confirm-receipt", controllers.ConfirmReceipt(deps.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
				r.Put("/{addressID}", controllers.AddressUpdate(deps.Addresses, logg))
				r.Delete("/{addressID}", controllers.AddressDelete(deps.Addresses, logg))
				r.Post("/{addressID}/default", controllers.AddressSetDefault(deps.Addresses, logg))
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.Profile(deps.Users, logg))
				r.Put("/locale", controllers.UpdateLocale(deps.Users, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(adminAuth)
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Catalog, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(deps.Catalog, logg))
			r.Put("/{categoryID}", controllers.AdminUpdateCategory(deps.Catalog, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteCategory(deps.Catalog, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.AdminListBanners(deps.Banners, logg))
			r.Post("/", controllers.AdminCreateBanner(deps.Banners, logg))
			r.Put("/{bannerID}", controllers.AdminUpdateBanner(deps.Banners, logg))
			r.Delete("/{bannerID}", controllers.AdminDeleteBanner(deps.Banners, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrders(deps.Orders, logg))
			r.Post("/{orderNumber}/status", controllers.AdminSetOrderStatus(deps.Orders, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Put("/{userID}/active", controllers.AdminSetUserActive(deps.Users, logg))
		})

		r.Get("/dashboard", controllers.AdminDashboard(deps.Dashboard, logg))
	})

	return r
}
