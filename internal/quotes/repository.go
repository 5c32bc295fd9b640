package quotes

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// ListFilter narrows the quote listing. Zero values mean "no filter".
type ListFilter struct {
	Owner       string
	Status      enums.QuoteStatus
	ClientQuery string
	From        *time.Time
	To          *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
	Page        pagination.Params
}

// Repository persists quotes and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the quote together with its lines.
func (r *Repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// Save persists all columns of an existing quote.
func (r *Repository) Save(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Omit("Lines", "Client").Save(quote).Error
}

// ReplaceLines swaps the full line set of a quote. Edits always resubmit every
// row, so partial patching is never needed.
func (r *Repository) ReplaceLines(ctx context.Context, quoteID uuid.UUID, lines []models.QuoteLine) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("quote_id = ?", quoteID).Delete(&models.QuoteLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].QuoteID = quoteID
	}
	return tx.Create(&lines).Error
}

// FindByID loads a quote with its client and ordered lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns a filtered page of quotes plus the unpaged row count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Quote, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Quote{})

	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientQuery != "" {
		query = query.Where("LOWER(client_name) LIKE ?", "%"+strings.ToLower(filter.ClientQuery)+"%")
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.MinTotal != nil {
		query = query.Where("total >= ?", *filter.MinTotal)
	}
	if filter.MaxTotal != nil {
		query = query.Where("total <= ?", *filter.MaxTotal)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.Quote
	err := query.
		Preload("Client").
		Order("created_at DESC").
		Offset(filter.Page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Delete removes the quote; lines cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Quote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkDelete removes the listed quotes and reports how many rows went away.
func (r *Repository) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.Quote{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

// MaxFolioNumber scans the stored folios matching the prefix and returns the
// highest sequential number found. Timestamp-form folios are ignored.
func (r *Repository) MaxFolioNumber(ctx context.Context, prefix string) (int, error) {
	var folios []string
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("folio LIKE ?", prefix+"-%").
		Pluck("folio", &folios).Error
	if err != nil {
		return 0, err
	}

	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `-(\d{4})$`)
	maxN := 0
	for _, folio := range folios {
		m := re.FindStringSubmatch(folio)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return maxN, nil
}

// FolioExists reports whether any quote already carries the folio.
func (r *Repository) FolioExists(ctx context.Context, folio string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("folio = ?", folio).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListStalePending returns PENDING quotes old enough for a reminder whose last
// notification is absent or outside the cooldown window.
func (r *Repository) ListStalePending(ctx context.Context, now time.Time, minAge, cooldown time.Duration) ([]models.Quote, error) {
	createdBefore := now.Add(-minAge)
	notifiedBefore := now.Add(-cooldown)

	var rows []models.Quote
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", enums.QuoteStatusPending).
		Where("created_at <= ?", createdBefore).
		Where("last_notified_at IS NULL OR last_notified_at <= ?", notifiedBefore).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StampNotified records that a reminder went out for the quote.
func (r *Repository) StampNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", id).
		Update("last_notified_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("quote %s not found", id)
	}
	return nil
}
