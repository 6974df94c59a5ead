package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/webqianduansong/shn-jade-backend/api/routes"
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
	"github.com/webqianduansong/shn-jade-backend/pkg/mailer"
	"github.com/webqianduansong/shn-jade-backend/pkg/metrics"
	"github.com/webqianduansong/shn-jade-backend/pkg/migrate"
	pkgredis "github.com/webqianduansong/shn-jade-backend/pkg/redis"
	"github.com/webqianduansong/shn-jade-backend/pkg/stripe"
)

const (
	webhookGuardTTL  = 24 * time.Hour
	shutdownDeadline = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stripe client", err)
		os.Exit(1)
	}

	orderMailer, err := mailer.New(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mailer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	bannersRepo := banners.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	addressRepo := address.NewRepository(gormDB)
	dashboardRepo := dashboard.NewRepository(gormDB)

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	bannersService, err := banners.NewService(bannersRepo)
	if err != nil {
		logg.Error(ctx, "failed to create banners service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}
	addressService, err := address.NewService(addressRepo, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create address service", err)
		os.Exit(1)
	}
	dashboardService, err := dashboard.NewService(dashboardRepo)
	if err != nil {
		logg.Error(ctx, "failed to create dashboard service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		CartMerger:     cartService,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Products:  catalogRepo,
		Orders:    ordersRepo,
		Users:     usersRepo,
		Addresses: addressRepo,
		Stripe:    stripeClient,
		Tx:        dbClient,
		Logger:    logg,
		Shipping:  cfg.Shipping,
		SiteURL:   cfg.App.SiteURL,
		Metrics:   storeMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:            ordersRepo,
		Users:             usersRepo,
		Mailer:            orderMailer,
		Metrics:           storeMetrics,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookGuardTTL, "stripe-webhook")
	if err != nil {
		logg.Error(ctx, "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		HTTPMetrics:    httpMetrics,
		Registry:       registry,
		AuthService:    authService,
		Register:       registerService,
		Catalog:        catalogService,
		Banners:        bannersService,
		CartService:    cartService,
		CartCookies:    cart.NewCookieCodec(cfg.Cart, cfg.JWT.CookieSecure),
		Checkout:       checkoutService,
		Orders:         ordersService,
		Addresses:      addressService,
		Dashboard:      dashboardService,
		Users:          usersRepo,
		Stripe:         stripeClient,
		StripeWebhooks: webhookService,
		WebhookGuard:   webhookGuard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(context.Background(), "api server stopped")
	}
}
