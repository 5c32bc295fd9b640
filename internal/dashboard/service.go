package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
)

// breakdownOrder fixes the category order the frontend charts expect.
var breakdownOrder = []enums.QuoteStatus{
	enums.QuoteStatusSent,
	enums.QuoteStatusPending,
	enums.QuoteStatusWon,
	enums.QuoteStatusLost,
}

// KPIs is the headline numbers block.
type KPIs struct {
	TotalQuotes  int64           `json:"total_cotizaciones"`
	TotalAmount  decimal.Decimal `json:"total_importe"`
	CatalogItems int64           `json:"total_catalogo"`
}

// Metrics is the monthly series plus KPIs payload.
type Metrics struct {
	Series []MonthlyPoint `json:"series"`
	KPIs   KPIs           `json:"kpis"`
}

// StatusBreakdown is the per-status share of the pipeline.
type StatusBreakdown struct {
	Labels      []string  `json:"labels"`
	Counts      []int64   `json:"counts"`
	Percentages []float64 `json:"percentages"`
	Total       int64     `json:"total"`
}

// Service exposes the dashboard aggregates, scoped per representative for
// non-admin actors.
type Service interface {
	Metrics(ctx context.Context, actor auth.Actor) (*Metrics, error)
	Breakdown(ctx context.Context, actor auth.Actor) (*StatusBreakdown, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a dashboard service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Metrics(ctx context.Context, actor auth.Actor) (*Metrics, error) {
	owner := ownerScope(actor)

	series, err := s.repo.MonthlySeries(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading monthly series")
	}
	count, amount, err := s.repo.QuoteTotals(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading quote totals")
	}
	catalogCount, err := s.repo.CatalogCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog count")
	}

	if series == nil {
		series = []MonthlyPoint{}
	}
	return &Metrics{
		Series: series,
		KPIs: KPIs{
			TotalQuotes:  count,
			TotalAmount:  amount,
			CatalogItems: catalogCount,
		},
	}, nil
}

func (s *service) Breakdown(ctx context.Context, actor auth.Actor) (*StatusBreakdown, error) {
	counts, err := s.repo.StatusCounts(ctx, ownerScope(actor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading status breakdown")
	}

	out := &StatusBreakdown{
		Labels:      make([]string, 0, len(breakdownOrder)),
		Counts:      make([]int64, 0, len(breakdownOrder)),
		Percentages: make([]float64, 0, len(breakdownOrder)),
	}
	for _, status := range breakdownOrder {
		n := counts[status]
		out.Labels = append(out.Labels, string(status))
		out.Counts = append(out.Counts, n)
		out.Total += n
	}
	for _, n := range out.Counts {
		if out.Total == 0 {
			out.Percentages = append(out.Percentages, 0)
			continue
		}
		pct := decimal.NewFromInt(n * 100).
			Div(decimal.NewFromInt(out.Total)).
			Round(2)
		f, _ := pct.Float64()
		out.Percentages = append(out.Percentages, f)
	}
	return out, nil
}

func ownerScope(actor auth.Actor) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.OwnerTag()
}
