package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// suggestLimit caps autocomplete responses.
const suggestLimit = 10

// ClientInput is the validated payload for create/update.
type ClientInput struct {
	Name    string
	Company string
	Owner   string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Company string    `json:"company,omitempty"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Address string    `json:"address,omitempty"`
	TaxID   string    `json:"tax_id,omitempty"`
}

// ListResult is one page of clients.
type ListResult struct {
	Clients []models.Client
	Total   int64
	Pages   int
}

// Service exposes client directory operations.
type Service interface {
	List(ctx context.Context, actor auth.Actor, query string, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, actor auth.Actor, input ClientInput) (*models.Client, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input ClientInput) (*models.Client, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	Suggest(ctx context.Context, actor auth.Actor, q string) ([]Suggestion, error)
	ExportRows(ctx context.Context, actor auth.Actor) ([]models.Client, error)
	Import(ctx context.Context, req ImportRequest) (*ImportReport, error)
}

type service struct {
	repo     *Repository
	importer *Importer
}

// NewService constructs a client service instance.
func NewService(repo *Repository, importer *Importer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	if importer == nil {
		return nil, fmt.Errorf("client importer required")
	}
	return &service{repo: repo, importer: importer}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, query string, page pagination.Params) (*ListResult, error) {
	filter := ListFilter{Query: strings.TrimSpace(query), Page: page}
	if !actor.IsAdmin() {
		filter.Owner = actor.OwnerTag()
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing clients")
	}
	return &ListResult{
		Clients: rows,
		Total:   total,
		Pages:   pagination.Pages(total, page.Limit),
	}, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading client")
	}
	if !actor.IsAdmin() && client.Owner != actor.OwnerTag() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return client, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}

	client := &models.Client{
		ID:      uuid.New(),
		Name:    name,
		Company: optional(input.Company),
		Owner:   resolveOwner(actor, input.Owner),
		Email:   optional(input.Email),
		Phone:   optional(input.Phone),
		Address: optional(input.Address),
		TaxID:   optional(input.TaxID),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "creating client")
	}
	return client, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input ClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}

	client.Name = name
	client.Company = optional(input.Company)
	client.Email = optional(input.Email)
	client.Phone = optional(input.Phone)
	client.Address = optional(input.Address)
	client.TaxID = optional(input.TaxID)
	if actor.IsAdmin() && strings.TrimSpace(input.Owner) != "" {
		client.Owner = strings.TrimSpace(input.Owner)
	}

	if err := s.repo.Save(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating client")
	}
	return client, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting client")
	}
	return nil
}

func (s *service) Suggest(ctx context.Context, actor auth.Actor, q string) ([]Suggestion, error) {
	if strings.TrimSpace(q) == "" {
		return []Suggestion{}, nil
	}

	owner := ""
	if !actor.IsAdmin() {
		owner = actor.OwnerTag()
	}

	rows, err := s.repo.Suggest(ctx, q, owner, suggestLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "suggesting clients")
	}

	out := make([]Suggestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, Suggestion{
			ID:      row.ID,
			Name:    row.Name,
			Company: deref(row.Company),
			Email:   deref(row.Email),
			Phone:   deref(row.Phone),
			Address: deref(row.Address),
			TaxID:   deref(row.TaxID),
		})
	}
	return out, nil
}

func (s *service) ExportRows(ctx context.Context, actor auth.Actor) ([]models.Client, error) {
	owner := ""
	if !actor.IsAdmin() {
		owner = actor.OwnerTag()
	}
	rows, err := s.repo.ListAll(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "exporting clients")
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

func resolveOwner(actor auth.Actor, requested string) string {
	if actor.IsAdmin() {
		return strings.TrimSpace(requested)
	}
	return actor.OwnerTag()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
