package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// VivifyInput is the catalog data carried on a quote line.
type VivifyInput struct {
	Name        string
	Unit        string
	UnitPrice   decimal.Decimal
	System      string
	Description string
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Query string
	Page  pagination.Params
}

// Repository persists catalog items.
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

// FindByID loads a single catalog item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNameInsensitive looks an item up by exact name, ignoring case.
func (r *Repository) FindByNameInsensitive(ctx context.Context, name string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new catalog item.
func (r *Repository) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save persists all columns of an existing item.
func (r *Repository) Save(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes the item. Quote lines keep their denormalized copy.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CatalogItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a filtered page of items plus the unpaged row count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.CatalogItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CatalogItem{})
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.CatalogItem
	err := query.
		Order("name ASC").
		Offset(filter.Page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every item for CSV export.
func (r *Repository) ListAll(ctx context.Context) ([]models.CatalogItem, error) {
	var rows []models.CatalogItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Suggest returns up to limit items whose name contains q.
func (r *Repository) Suggest(ctx context.Context, q string, limit int) ([]models.CatalogItem, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var rows []models.CatalogItem
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", like).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOrCreateByName resolves the catalog item a quote line references,
// creating it with the line's data on first use.
func (r *Repository) FindOrCreateByName(ctx context.Context, tx *gorm.DB, in VivifyInput) (*models.CatalogItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil
	}

	conn := r.db
	if tx != nil {
		conn = tx
	}
	conn = conn.WithContext(ctx)

	var existing models.CatalogItem
	err := conn.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error
	switch {
	case err == nil:
		return &existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	item := &models.CatalogItem{
		ID:          uuid.New(),
		Name:        name,
		Unit:        strings.TrimSpace(in.Unit),
		UnitPrice:   in.UnitPrice.Round(2),
		System:      optional(in.System),
		Description: optional(in.Description),
	}
	if err := conn.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
