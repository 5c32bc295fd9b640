package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// bulkDeleteMax bounds one admin purge request.
const bulkDeleteMax = 500

// LineInput is one submitted quote row.
type LineInput struct {
	Name        string
	Unit        string
	System      string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// QuoteInput is the validated payload for create/update.
type QuoteInput struct {
	ClientName    string
	ClientCompany string
	ClientEmail   string
	ClientPhone   string
	ClientAddress string
	ClientTaxID   string
	ZoneName      string
	TaxPercent    *decimal.Decimal
	Currency      string
	Notes         string
	Owner         string
	ValidUntil    *time.Time
	Lines         []LineInput
}

// ListQuery narrows and pages the quote listing.
type ListQuery struct {
	Status      string
	ClientQuery string
	From        *time.Time
	To          *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
	Page        pagination.Params
}

// ListResult is one page of quotes.
type ListResult struct {
	Quotes []models.Quote
	Total  int64
	Pages  int
}

// txRunner is the transactional surface of db.Client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// clientVivifier resolves or creates the client a quote references.
type clientVivifier interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, in clients.VivifyInput) (*models.Client, error)
}

// catalogVivifier resolves or creates the catalog item behind a line.
type catalogVivifier interface {
	FindOrCreateByName(ctx context.Context, tx *gorm.DB, in catalog.VivifyInput) (*models.CatalogItem, error)
}

// Notifier receives quote lifecycle events. Implementations must never
// block the calling request.
type Notifier interface {
	QuoteCreated(ctx context.Context, quote *models.Quote)
	QuoteUpdated(ctx context.Context, quote *models.Quote)
	QuoteStatusChanged(ctx context.Context, quote *models.Quote, from, to enums.QuoteStatus)
}

// Service exposes quote operations.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input QuoteInput) (*models.Quote, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input QuoteInput) (*models.Quote, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, actor auth.Actor, query ListQuery) (*ListResult, error)
	ChangeStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status string) (*models.Quote, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	BulkDelete(ctx context.Context, actor auth.Actor, ids []uuid.UUID) (int64, error)
}

type service struct {
	db          txRunner
	repo        *Repository
	clientsRepo clientVivifier
	catalogRepo catalogVivifier
	notifier    Notifier
	folioCfg    config.FolioConfig
	quotesCfg   config.QuotesConfig
	logger      *logger.Logger
	now         func() time.Time
}

// NewService constructs a quote service instance.
func NewService(
	db txRunner,
	repo *Repository,
	clientsRepo clientVivifier,
	catalogRepo catalogVivifier,
	notifier Notifier,
	folioCfg config.FolioConfig,
	quotesCfg config.QuotesConfig,
	logg *logger.Logger,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if clientsRepo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          db,
		repo:        repo,
		clientsRepo: clientsRepo,
		catalogRepo: catalogRepo,
		notifier:    notifier,
		folioCfg:    folioCfg,
		quotesCfg:   quotesCfg,
		logger:      logg,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input QuoteInput) (*models.Quote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	owner := resolveOwner(actor, input.Owner)
	now := s.now()

	var quote *models.Quote
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		folio, err := GenerateFolio(ctx, repoTx, s.folioCfg.Prefix, now)
		if err != nil {
			return err
		}

		client, err := s.vivifyClient(ctx, tx, actor, input, owner)
		if err != nil {
			return err
		}

		quote = &models.Quote{
			ID:         uuid.New(),
			Folio:      folio,
			ClientName: strings.TrimSpace(input.ClientName),
			Status:     enums.QuoteStatusPending,
			Currency:   s.currency(input.Currency),
			ZoneName:   strings.TrimSpace(input.ZoneName),
			Notes:      optional(input.Notes),
			Owner:      owner,
			ValidUntil: s.validUntil(input.ValidUntil, now),
		}
		if client != nil {
			quote.ClientID = &client.ID
			quote.ClientName = client.Name
		}

		lines, err := s.buildLines(ctx, tx, quote.ID, input.Lines)
		if err != nil {
			return err
		}
		quote.Lines = lines

		s.applyTotals(quote, input.TaxPercent)
		return repoTx.Create(ctx, quote)
	})
	if err != nil {
		return nil, wrapQuoteErr(err, "creating quote")
	}

	s.notifier.QuoteCreated(ctx, quote)
	return quote, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input QuoteInput) (*models.Quote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	quote, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	owner := quote.Owner
	if actor.IsAdmin() && strings.TrimSpace(input.Owner) != "" {
		owner = strings.TrimSpace(input.Owner)
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		client, err := s.vivifyClient(ctx, tx, actor, input, owner)
		if err != nil {
			return err
		}

		quote.ClientName = strings.TrimSpace(input.ClientName)
		quote.ClientID = nil
		if client != nil {
			quote.ClientID = &client.ID
			quote.ClientName = client.Name
		}
		quote.Currency = s.currency(input.Currency)
		quote.ZoneName = strings.TrimSpace(input.ZoneName)
		quote.Notes = optional(input.Notes)
		quote.Owner = owner
		if input.ValidUntil != nil {
			quote.ValidUntil = input.ValidUntil
		}

		lines, err := s.buildLines(ctx, tx, quote.ID, input.Lines)
		if err != nil {
			return err
		}
		quote.Lines = lines

		s.applyTotals(quote, input.TaxPercent)

		if err := repoTx.Save(ctx, quote); err != nil {
			return err
		}
		return repoTx.ReplaceLines(ctx, quote.ID, lines)
	})
	if err != nil {
		return nil, wrapQuoteErr(err, "updating quote")
	}

	s.notifier.QuoteUpdated(ctx, quote)
	return quote, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quote")
	}
	if !actor.IsAdmin() && quote.Owner != actor.OwnerTag() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, query ListQuery) (*ListResult, error) {
	filter := ListFilter{
		ClientQuery: strings.TrimSpace(query.ClientQuery),
		From:        query.From,
		To:          query.To,
		MinTotal:    query.MinTotal,
		MaxTotal:    query.MaxTotal,
		Page:        query.Page,
	}
	if !actor.IsAdmin() {
		filter.Owner = actor.OwnerTag()
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status")
		}
		filter.Status = status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quotes")
	}
	return &ListResult{
		Quotes: rows,
		Total:  total,
		Pages:  pagination.Pages(total, query.Page.Limit),
	}, nil
}

func (s *service) ChangeStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status string) (*models.Quote, error) {
	next, err := enums.ParseQuoteStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status")
	}

	quote, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := quote.Status
	if previous == next {
		return quote, nil
	}

	quote.Status = next
	if next == enums.QuoteStatusPending {
		// re-opening rearms the reminder sweep
		quote.LastNotifiedAt = nil
	}
	if err := s.repo.Save(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating quote status")
	}

	s.notifier.QuoteStatusChanged(ctx, quote, previous, next)
	return quote, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can delete quotes")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting quote")
	}
	return nil
}

func (s *service) BulkDelete(ctx context.Context, actor auth.Actor, ids []uuid.UUID) (int64, error) {
	if !actor.IsAdmin() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators can delete quotes")
	}
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no quote ids provided")
	}
	if len(ids) > bulkDeleteMax {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d quotes per request", bulkDeleteMax))
	}

	deleted, err := s.repo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk deleting quotes")
	}
	return deleted, nil
}

func (s *service) vivifyClient(ctx context.Context, tx *gorm.DB, actor auth.Actor, input QuoteInput, owner string) (*models.Client, error) {
	in := clients.VivifyInput{
		Name:    input.ClientName,
		Company: input.ClientCompany,
		Email:   input.ClientEmail,
		Phone:   input.ClientPhone,
		Address: input.ClientAddress,
		TaxID:   input.ClientTaxID,
		Owner:   owner,
	}
	if !actor.IsAdmin() {
		in.OwnerScope = true
	}
	return s.clientsRepo.FindOrCreate(ctx, tx, in)
}

// buildLines vivifies each concept against the catalog and returns the
// persisted line set in submission order.
func (s *service) buildLines(ctx context.Context, tx *gorm.DB, quoteID uuid.UUID, inputs []LineInput) ([]models.QuoteLine, error) {
	lines := make([]models.QuoteLine, 0, len(inputs))
	for idx, in := range inputs {
		item, err := s.catalogRepo.FindOrCreateByName(ctx, tx, catalog.VivifyInput{
			Name:        in.Name,
			Unit:        in.Unit,
			UnitPrice:   in.UnitPrice,
			System:      in.System,
			Description: in.Description,
		})
		if err != nil {
			return nil, err
		}

		line := models.QuoteLine{
			ID:          uuid.New(),
			QuoteID:     quoteID,
			Name:        strings.TrimSpace(in.Name),
			Unit:        strings.TrimSpace(in.Unit),
			System:      optional(in.System),
			Description: optional(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice.Round(2),
			Subtotal:    LineSubtotal(in.Quantity, in.UnitPrice),
			Position:    idx,
		}
		if item != nil {
			line.CatalogItemID = &item.ID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *service) applyTotals(quote *models.Quote, taxPercent *decimal.Decimal) {
	quote.ZonePercent = ZonePercent(quote.ZoneName)
	quote.TaxPercent = s.taxPercent(taxPercent)

	subtotals := make([]decimal.Decimal, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		subtotals = append(subtotals, line.Subtotal)
	}
	totals := ComputeTotals(subtotals, quote.ZonePercent, quote.TaxPercent)
	quote.Subtotal = totals.Subtotal
	quote.DiscountTotal = totals.DiscountTotal
	quote.TaxAmount = totals.TaxAmount
	quote.Total = totals.Total
}

func (s *service) taxPercent(requested *decimal.Decimal) decimal.Decimal {
	if requested != nil && !requested.IsNegative() {
		return requested.Round(2)
	}
	return decimal.NewFromFloat(s.quotesCfg.DefaultTaxRate).Round(2)
}

func (s *service) currency(requested string) string {
	if trimmed := strings.TrimSpace(requested); trimmed != "" {
		return strings.ToUpper(trimmed)
	}
	return s.quotesCfg.DefaultCurrency
}

func (s *service) validUntil(requested *time.Time, now time.Time) *time.Time {
	if requested != nil {
		return requested
	}
	if s.quotesCfg.ValidityDays <= 0 {
		return nil
	}
	until := now.AddDate(0, 0, s.quotesCfg.ValidityDays)
	return &until
}

func validateInput(input QuoteInput) error {
	if strings.TrimSpace(input.ClientName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote needs at least one line")
	}
	for idx, line := range input.Lines {
		if strings.TrimSpace(line.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d is missing a concept name", idx+1))
		}
		if !line.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d needs a positive quantity", idx+1))
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d has a negative unit price", idx+1))
		}
	}
	return nil
}

func resolveOwner(actor auth.Actor, requested string) string {
	if actor.IsAdmin() {
		if trimmed := strings.TrimSpace(requested); trimmed != "" {
			return trimmed
		}
	}
	return actor.OwnerTag()
}

func wrapQuoteErr(err error, action string) error {
	var coded *pkgerrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
