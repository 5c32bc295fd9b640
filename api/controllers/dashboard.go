package controllers

import (
	"net/http"

	"github.com/poliutech/cotizador-backend/api/middleware"
	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/internal/dashboard"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// dashboardRecentLimit is how many recent quotes the landing payload carries.
const dashboardRecentLimit = 5

// DashboardHome returns the KPI block plus the most recent quotes.
func DashboardHome(dashSvc dashboard.Service, quoteSvc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		metrics, err := dashSvc.Metrics(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recent, err := quoteSvc.List(r.Context(), actor, quotes.ListQuery{
			Page: pagination.Params{Page: 1, Limit: dashboardRecentLimit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"kpis":          metrics.KPIs,
			"recent_quotes": quotesToDTOs(recent.Quotes),
		})
	}
}

func DashboardMetrics(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		metrics, err := svc.Metrics(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, metrics)
	}
}

func DashboardStatusBreakdown(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		breakdown, err := svc.Breakdown(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, breakdown)
	}
}
