package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/webqianduansong/shn-jade-backend/api/responses"
	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	"github.com/webqianduansong/shn-jade-backend/pkg/db"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
	pkgredis "github.com/webqianduansong/shn-jade-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Jade-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status and returns 503 when any
// backing service is unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		w.Header().Set("X-Jade-Env", cfg.App.Env)

		checks := map[string]string{
			"database": pingStatus(ctx, logg, "database", database),
			"redis":    pingStatus(ctx, logg, "redis", cache),
		}

		status := http.StatusOK
		overall := "ready"
		for _, check := range checks {
			if check == "unreachable" {
				status = http.StatusServiceUnavailable
				overall = "degraded"
			}
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingStatus(ctx context.Context, logg *logger.Logger, name string, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		if logg != nil {
			logg.Error(ctx, "readiness check failed: "+name, err)
		}
		return "unreachable"
	}
	return "ok"
}
