package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
)

// MonthlyPoint is one month of quoting activity.
type MonthlyPoint struct {
	Month  string          `json:"mes"`
	Count  int64           `json:"cotizaciones"`
	Amount decimal.Decimal `json:"total"`
}

// Repository answers the aggregate queries behind the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// monthExpr returns the dialect's year-month bucket expression.
func (r *Repository) monthExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', created_at)"
	}
	return "to_char(created_at, 'YYYY-MM')"
}

// MonthlySeries groups quote count and amount by calendar month, oldest
// first. An empty owner means all representatives.
func (r *Repository) MonthlySeries(ctx context.Context, owner string) ([]MonthlyPoint, error) {
	expr := r.monthExpr()
	query := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Select(expr + " AS month, COUNT(id) AS count, COALESCE(SUM(total), 0) AS amount").
		Group(expr).
		Order("month ASC")
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var points []MonthlyPoint
	if err := query.Scan(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// QuoteTotals returns the overall quote count and summed amount.
func (r *Repository) QuoteTotals(ctx context.Context, owner string) (int64, decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Quote{})
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var result struct {
		Count  int64
		Amount decimal.Decimal
	}
	err := query.
		Select("COUNT(id) AS count, COALESCE(SUM(total), 0) AS amount").
		Scan(&result).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return result.Count, result.Amount, nil
}

// CatalogCount returns the number of cataloged concepts.
func (r *Repository) CatalogCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CatalogItem{}).Count(&count).Error
	return count, err
}

// StatusCounts groups quotes by status.
func (r *Repository) StatusCounts(ctx context.Context, owner string) (map[enums.QuoteStatus]int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Select("status, COUNT(id) AS count").
		Group("status")
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var rows []struct {
		Status enums.QuoteStatus
		Count  int64
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[enums.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
