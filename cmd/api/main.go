package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/poliutech/cotizador-backend/api/routes"
	"github.com/poliutech/cotizador-backend/internal/audit"
	"github.com/poliutech/cotizador-backend/internal/auth"
	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/internal/cron"
	"github.com/poliutech/cotizador-backend/internal/dashboard"
	"github.com/poliutech/cotizador-backend/internal/notify"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	"github.com/poliutech/cotizador-backend/internal/users"
	"github.com/poliutech/cotizador-backend/pkg/auth/session"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/metrics"
	"github.com/poliutech/cotizador-backend/pkg/migrate"
	"github.com/poliutech/cotizador-backend/pkg/redis"
	"github.com/poliutech/cotizador-backend/pkg/whatsapp"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	if err := users.SeedAdmin(context.Background(), userRepo, cfg.Seed, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "failed to seed bootstrap admin", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	whatsappClient, err := whatsapp.NewClient(context.Background(), cfg.WhatsApp, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create whatsapp client", err)
		os.Exit(1)
	}
	notifyService, err := notify.NewService(
		whatsappClient,
		cfg.WhatsApp,
		metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	clientsRepo := clients.NewRepository(dbClient.DB())
	clientsImporter, err := clients.NewImporter(clientsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients importer", err)
		os.Exit(1)
	}
	clientsService, err := clients.NewService(clientsRepo, clientsImporter)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	importer, err := catalog.NewImporter(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog importer", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalogRepo, importer)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	quotesRepo := quotes.NewRepository(dbClient.DB())
	quotesService, err := quotes.NewService(
		dbClient,
		quotesRepo,
		clientsRepo,
		catalogRepo,
		notifyService,
		cfg.Folio,
		cfg.Quotes,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	// Backs the admin debug endpoint that forces a reminder sweep.
	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:     logg,
		Repository: quotesRepo,
		Notifier:   notifyService,
		MinAge:     cfg.Reminder.MinAge,
		Cooldown:   cfg.Reminder.Cooldown,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:        authService,
			Quotes:      quotesService,
			Clients:     clientsService,
			Catalog:     catalogService,
			Dashboard:   dashboardService,
			Audit:       auditService,
			Notifier:    notifyService,
			ReminderJob: reminderJob,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
