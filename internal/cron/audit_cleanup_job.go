package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/poliutech/cotizador-backend/pkg/logger"
)

const defaultAuditRetention = 90 * 24 * time.Hour

type auditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditCleanupJobParams configure the audit log retention job.
type AuditCleanupJobParams struct {
	Logger    *logger.Logger
	Audit     auditPurger
	Retention time.Duration
}

// NewAuditCleanupJob builds the job that trims audit log entries older
// than the retention window.
func NewAuditCleanupJob(params AuditCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultAuditRetention
	}
	return &auditCleanupJob{
		logg:      params.Logger,
		audit:     params.Audit,
		retention: retention,
	}, nil
}

type auditCleanupJob struct {
	logg      *logger.Logger
	audit     auditPurger
	retention time.Duration
}

func (j *auditCleanupJob) Name() string { return "audit-log-cleanup" }

func (j *auditCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.audit.Purge(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("purging audit log: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": int(j.retention.Hours() / 24),
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "audit log cleanup complete")
	return nil
}
