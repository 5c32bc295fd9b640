package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

const (
	defaultReminderMinAge   = 24 * time.Hour
	defaultReminderCooldown = 24 * time.Hour
)

// reminderRepo is the quote surface the sweep needs.
type reminderRepo interface {
	ListStalePending(ctx context.Context, now time.Time, minAge, cooldown time.Duration) ([]models.Quote, error)
	StampNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// reminderNotifier delivers one reminder synchronously.
type reminderNotifier interface {
	SendReminder(ctx context.Context, quote *models.Quote) error
}

// ReminderJobParams configure the pending-quote reminder sweep.
type ReminderJobParams struct {
	Logger     *logger.Logger
	Repository reminderRepo
	Notifier   reminderNotifier
	MinAge     time.Duration
	Cooldown   time.Duration
}

// NewReminderJob builds the sweep that nudges sales about quotes still
// PENDING after the minimum age. A quote is reminded at most once per
// cooldown window; the stamp is written only after a successful send.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultReminderMinAge
	}
	cooldown := params.Cooldown
	if cooldown <= 0 {
		cooldown = defaultReminderCooldown
	}
	return &reminderJob{
		logg:     params.Logger,
		repo:     params.Repository,
		notifier: params.Notifier,
		minAge:   minAge,
		cooldown: cooldown,
		now:      time.Now,
	}, nil
}

type reminderJob struct {
	logg     *logger.Logger
	repo     reminderRepo
	notifier reminderNotifier
	minAge   time.Duration
	cooldown time.Duration
	now      func() time.Time
}

func (j *reminderJob) Name() string { return "pending-quote-reminder" }

func (j *reminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	stale, err := j.repo.ListStalePending(ctx, now, j.minAge, j.cooldown)
	if err != nil {
		return fmt.Errorf("listing stale pending quotes: %w", err)
	}

	var sent int
	var errs error
	for i := range stale {
		quote := &stale[i]
		if err := j.notifier.SendReminder(ctx, quote); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminder %s: %w", quote.Folio, err))
			continue
		}
		if err := j.repo.StampNotified(ctx, quote.ID, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stamping %s: %w", quote.Folio, err))
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"eligible": len(stale),
		"sent":     sent,
	})
	j.logg.Info(logCtx, "pending quote reminder sweep complete")
	return errs
}
