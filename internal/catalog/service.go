package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// suggestLimit caps autocomplete responses.
const suggestLimit = 10

// ItemInput is the validated payload for create/update.
type ItemInput struct {
	Name        string
	Unit        string
	UnitPrice   decimal.Decimal
	System      string
	Description string
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	System      string          `json:"system,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ListResult is one page of catalog items.
type ListResult struct {
	Items []models.CatalogItem
	Total int64
	Pages int
}

// Service exposes catalog operations. The catalog is shared across
// owners, so reads are unscoped and writes are gated at the router.
type Service interface {
	List(ctx context.Context, query string, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	Create(ctx context.Context, input ItemInput) (*models.CatalogItem, error)
	Update(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Suggest(ctx context.Context, q string) ([]Suggestion, error)
	ExportRows(ctx context.Context) ([]models.CatalogItem, error)
	Import(ctx context.Context, req ImportRequest) (*ImportReport, error)
}

type service struct {
	repo     *Repository
	importer *Importer
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, importer *Importer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if importer == nil {
		return nil, fmt.Errorf("catalog importer required")
	}
	return &service{repo: repo, importer: importer}, nil
}

func (s *service) List(ctx context.Context, query string, page pagination.Params) (*ListResult, error) {
	filter := ListFilter{Query: strings.TrimSpace(query), Page: page}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing catalog items")
	}
	return &ListResult{
		Items: rows,
		Total: total,
		Pages: pagination.Pages(total, page.Limit),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog item")
	}
	return item, nil
}

func (s *service) Create(ctx context.Context, input ItemInput) (*models.CatalogItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	item := &models.CatalogItem{
		ID:          uuid.New(),
		Name:        name,
		Unit:        strings.TrimSpace(input.Unit),
		UnitPrice:   input.UnitPrice.Round(2),
		System:      optional(input.System),
		Description: optional(input.Description),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "creating catalog item")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	item.Name = name
	item.Unit = strings.TrimSpace(input.Unit)
	item.UnitPrice = input.UnitPrice.Round(2)
	item.System = optional(input.System)
	item.Description = optional(input.Description)

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating catalog item")
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting catalog item")
	}
	return nil
}

func (s *service) Suggest(ctx context.Context, q string) ([]Suggestion, error) {
	if strings.TrimSpace(q) == "" {
		return []Suggestion{}, nil
	}

	rows, err := s.repo.Suggest(ctx, q, suggestLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "suggesting catalog items")
	}

	out := make([]Suggestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, Suggestion{
			ID:          row.ID,
			Name:        row.Name,
			Unit:        row.Unit,
			UnitPrice:   row.UnitPrice,
			System:      deref(row.System),
			Description: deref(row.Description),
		})
	}
	return out, nil
}

func (s *service) ExportRows(ctx context.Context) ([]models.CatalogItem, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "exporting catalog items")
	}
	return rows, nil
}

func (s *service) Import(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	report, err := s.importer.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
