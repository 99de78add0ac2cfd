package controllers

import (
	"net/http"

	"github.com/inkbound/inkbound-backend/api/responses"
	"github.com/inkbound/inkbound-backend/pkg/bigquery"
	"github.com/inkbound/inkbound-backend/pkg/config"
	"github.com/inkbound/inkbound-backend/pkg/db"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/logger"
	"github.com/inkbound/inkbound-backend/pkg/redis"
	"github.com/inkbound/inkbound-backend/pkg/storage/gcs"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkbound-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each backing dependency before reporting ready. Nil
// dependencies are skipped so the endpoint works in partial deployments.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger, bqP bigquery.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkbound-Env", cfg.App.Env)

		checks := []struct {
			name string
			ping func() error
		}{
			{"postgres", func() error {
				if dbP == nil {
					return nil
				}
				return dbP.Ping(r.Context())
			}},
			{"redis", func() error {
				if redisP == nil {
					return nil
				}
				return redisP.Ping(r.Context())
			}},
			{"gcs", func() error {
				if gcsP == nil {
					return nil
				}
				return gcsP.Ping(r.Context())
			}},
			{"bigquery", func() error {
				if bqP == nil {
					return nil
				}
				return bqP.Ping(r.Context())
			}},
		}

		for _, check := range checks {
			if err := check.ping(); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
