package audit

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// ListFilter narrows the audit trail listing.
type ListFilter struct {
	UserName string
	Method   string
	Route    string
	From     *time.Time
	To       *time.Time
	Page     pagination.Params
}

// Repository persists audit log entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one entry to the trail.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns a filtered page of entries, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.AuditLogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLogEntry{})

	if filter.UserName != "" {
		query = query.Where("LOWER(user_name) LIKE ?", "%"+strings.ToLower(filter.UserName)+"%")
	}
	if filter.Method != "" {
		query = query.Where("method = ?", strings.ToUpper(filter.Method))
	}
	if filter.Route != "" {
		query = query.Where("route LIKE ?", "%"+filter.Route+"%")
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.AuditLogEntry
	err := query.
		Order("occurred_at DESC").
		Offset(filter.Page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DeleteOlderThan purges entries past the retention window and reports how
// many rows went away.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&models.AuditLogEntry{})
	return result.RowsAffected, result.Error
}
