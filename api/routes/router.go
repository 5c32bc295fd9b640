package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poliutech/cotizador-backend/api/controllers"
	"github.com/poliutech/cotizador-backend/api/middleware"
	"github.com/poliutech/cotizador-backend/internal/audit"
	authsvc "github.com/poliutech/cotizador-backend/internal/auth"
	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/internal/cron"
	"github.com/poliutech/cotizador-backend/internal/dashboard"
	"github.com/poliutech/cotizador-backend/internal/notify"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	"github.com/poliutech/cotizador-backend/pkg/auth/session"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      authsvc.Service
	Quotes    quotes.Service
	Clients   clients.Service
	Catalog   catalog.Service
	Dashboard dashboard.Service
	Audit     audit.Service
	Notifier  *notify.Service
	// ReminderJob backs the admin debug endpoint that forces a sweep.
	ReminderJob cron.Job
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.Checker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Audit(svcs.Audit))

		r.Get("/dashboard", controllers.DashboardHome(svcs.Dashboard, svcs.Quotes, logg))
		r.Get("/dashboard/metrics", controllers.DashboardMetrics(svcs.Dashboard, logg))
		r.Get("/dashboard/status-breakdown", controllers.DashboardStatusBreakdown(svcs.Dashboard, logg))

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.QuoteList(svcs.Quotes, logg))
			r.Post("/", controllers.QuoteCreate(svcs.Quotes, logg))
			r.With(middleware.RequireAdmin(logg)).
				Post("/bulk-delete", controllers.QuoteBulkDelete(svcs.Quotes, logg))
			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", controllers.QuoteDetail(svcs.Quotes, logg))
				r.Put("/", controllers.QuoteUpdate(svcs.Quotes, logg))
				r.With(middleware.RequireAdmin(logg)).
					Delete("/", controllers.QuoteDelete(svcs.Quotes, logg))
				r.Post("/status", controllers.QuoteChangeStatus(svcs.Quotes, logg))
				r.Get("/export.csv", controllers.QuoteExport(svcs.Quotes, cfg.Company, "csv", logg))
				r.Get("/export.xlsx", controllers.QuoteExport(svcs.Quotes, cfg.Company, "xlsx", logg))
				r.Get("/export.pdf", controllers.QuoteExport(svcs.Quotes, cfg.Company, "pdf", logg))
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientList(svcs.Clients, logg))
			r.Post("/", controllers.ClientCreate(svcs.Clients, logg))
			r.Get("/suggest", controllers.ClientSuggest(svcs.Clients, logg))
			r.Get("/export.csv", controllers.ClientExportCSV(svcs.Clients, logg))
			r.With(middleware.RequireAdmin(logg)).
				Post("/import", controllers.ClientImport(svcs.Clients, logg))
			r.Route("/{clientId}", func(r chi.Router) {
				r.Get("/", controllers.ClientDetail(svcs.Clients, logg))
				r.Put("/", controllers.ClientUpdate(svcs.Clients, logg))
				r.Delete("/", controllers.ClientDelete(svcs.Clients, logg))
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(svcs.Catalog, logg))
			r.Get("/suggest", controllers.CatalogSuggest(svcs.Catalog, logg))
			r.Get("/export.csv", controllers.CatalogExportCSV(svcs.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CatalogCreate(svcs.Catalog, logg))
				r.Post("/import", controllers.CatalogImport(svcs.Catalog, logg))
				r.Route("/{itemId}", func(r chi.Router) {
					r.Get("/", controllers.CatalogDetail(svcs.Catalog, logg))
					r.Put("/", controllers.CatalogUpdate(svcs.Catalog, logg))
					r.Delete("/", controllers.CatalogDelete(svcs.Catalog, logg))
				})
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Audit(svcs.Audit))

		r.Get("/audit", controllers.AdminAuditList(svcs.Audit, logg))
		r.Route("/debug", func(r chi.Router) {
			r.Post("/test-message", controllers.AdminTestMessage(svcs.Notifier, logg))
			r.Post("/run-reminders", controllers.AdminRunReminders(svcs.ReminderJob, logg))
		})
	})

	return r
}
