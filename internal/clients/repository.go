package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// VivifyInput is the client data carried on a quote submission. Matching is by
// name (case-insensitive), narrowed by company and owner when provided.
type VivifyInput struct {
	Name       string
	Company    string
	Email      string
	Phone      string
	Address    string
	TaxID      string
	Owner      string
	OwnerScope bool
}

// ListFilter narrows the client listing.
type ListFilter struct {
	Owner string
	Query string
	Page  pagination.Params
}

// Repository persists client records.
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

// FindByID loads a single client.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByNameInsensitive matches a client by name regardless of casing.
func (r *Repository) FindByNameInsensitive(ctx context.Context, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Create inserts a new client.
func (r *Repository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// Save persists all columns of an existing client.
func (r *Repository) Save(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete removes the client. Quotes keep their denormalized client name.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a filtered page of clients plus the unpaged row count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})
	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.Client
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

// ListAll returns every client for CSV export, owner-scoped when set.
func (r *Repository) ListAll(ctx context.Context, owner string) ([]models.Client, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}
	var rows []models.Client
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Suggest returns up to limit clients whose name or company contains q.
func (r *Repository) Suggest(ctx context.Context, q, owner string, limit int) ([]models.Client, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	query := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("LOWER(name) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?", like, like)
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var rows []models.Client
	if err := query.Order("name ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOrCreate resolves the client a quote references, creating it on first
// use. Lookups never match another representative's client when OwnerScope
// is set.
func (r *Repository) FindOrCreate(ctx context.Context, tx *gorm.DB, in VivifyInput) (*models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil
	}

	conn := r.db
	if tx != nil {
		conn = tx
	}
	conn = conn.WithContext(ctx)

	query := conn.Model(&models.Client{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if company := strings.TrimSpace(in.Company); company != "" {
		query = query.Where("LOWER(COALESCE(company, '')) = ?", strings.ToLower(company))
	}
	if in.OwnerScope {
		query = query.Where("owner = ?", in.Owner)
	}

	var existing models.Client
	err := query.First(&existing).Error
	switch {
	case err == nil:
		return &existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	client := &models.Client{
		ID:      uuid.New(),
		Name:    name,
		Company: optional(in.Company),
		Owner:   strings.TrimSpace(in.Owner),
		Email:   optional(in.Email),
		Phone:   optional(in.Phone),
		Address: optional(in.Address),
		TaxID:   optional(in.TaxID),
	}
	if err := conn.Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
