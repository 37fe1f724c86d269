package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/rental-pricing/api/responses"
	"github.com/angelmondragon/rental-pricing/pkg/config"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
)

const (
	envHeader    = "X-Rental-Pricing-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	checks := map[string]Pinger{}
	if dbP != nil {
		checks["database"] = dbP
	}
	if redisP != nil {
		checks["redis"] = redisP
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := map[string]string{"status": "ready"}
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				responses.WriteError(logg.WithField(r.Context(), "dependency", name), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			status[name] = "ok"
		}
		responses.WriteSuccess(w, status)
	}
}
