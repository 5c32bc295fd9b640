package controllers

import (
	"net/http"

	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cotizador-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cotizador-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
