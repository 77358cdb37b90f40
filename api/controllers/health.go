package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/trailhop/partner-payments/api/responses"
	"github.com/trailhop/partner-payments/pkg/config"
	pkgerrors "github.com/trailhop/partner-payments/pkg/errors"
	"github.com/trailhop/partner-payments/pkg/logger"
)

const readinessTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type readinessCheck struct {
	name   string
	target pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trailhop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency and fails readiness when any of
// them is unreachable. Nil dependencies are skipped so partial deployments
// (no pubsub in local dev, say) still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP pinger) http.HandlerFunc {
	checks := []readinessCheck{
		{name: "db", target: dbP},
		{name: "redis", target: redisP},
		{name: "pubsub", target: pubsubP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trailhop-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		for _, check := range checks {
			if check.target == nil {
				status[check.name] = "skipped"
				continue
			}
			if err := check.target.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "readiness check failed: "+check.name, err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" not ready"))
				return
			}
			status[check.name] = "ok"
		}

		responses.WriteSuccess(w, status)
	}
}
