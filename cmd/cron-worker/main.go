package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/poliutech/cotizador-backend/internal/audit"
	"github.com/poliutech/cotizador-backend/internal/cron"
	"github.com/poliutech/cotizador-backend/internal/notify"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/metrics"
	"github.com/poliutech/cotizador-backend/pkg/migrate"
	"github.com/poliutech/cotizador-backend/pkg/redis"
	"github.com/poliutech/cotizador-backend/pkg/whatsapp"
)

const lockKeyFormat = "cotizador:cron-worker:lock:%s:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:     logg,
		Repository: quotes.NewRepository(dbClient.DB()),
		Notifier:   notifyService,
		MinAge:     cfg.Reminder.MinAge,
		Cooldown:   cfg.Reminder.Cooldown,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewAuditCleanupJob(cron.AuditCleanupJobParams{
		Logger:    logg,
		Audit:     auditService,
		Retention: cfg.Audit.Retention(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create audit cleanup job", err)
		os.Exit(1)
	}

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	// The reminder sweep and the audit purge run on different cadences,
	// so each gets its own loop and its own distributed lock.
	reminderService, err := newCronService(cfg, logg, redisClient, cronMetrics, "reminders", cfg.Reminder.Interval, reminderJob)
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder cron service", err)
		os.Exit(1)
	}
	cleanupService, err := newCronService(cfg, logg, redisClient, cronMetrics, "audit-cleanup", cfg.Audit.CleanupEvery, cleanupJob)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return reminderService.Run(groupCtx) })
	group.Go(func() error { return cleanupService.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func newCronService(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	cronMetrics *metrics.CronJobMetrics,
	name string,
	interval time.Duration,
	jobs ...cron.Job,
) (*cron.Service, error) {
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env, name), 0)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: interval,
	})
}

func lockKey(env, name string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env, name)
}
