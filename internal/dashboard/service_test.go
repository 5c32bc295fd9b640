package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Quote{}, &models.CatalogItem{}))
	return conn
}

func seedQuote(t *testing.T, db *gorm.DB, owner string, status enums.QuoteStatus, total string, createdAt time.Time) {
	t.Helper()
	quote := &models.Quote{
		ID:     uuid.New(),
		Folio:  "PTCH-" + uuid.NewString()[:8],
		Owner:  owner,
		Status: status,
		Total:  decimal.RequireFromString(total),
	}
	require.NoError(t, db.Create(quote).Error)
	require.NoError(t, db.Model(quote).Update("created_at", createdAt).Error)
}

func TestService_Metrics(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	march := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	seedQuote(t, db, "Laura", enums.QuoteStatusPending, "100.00", march)
	seedQuote(t, db, "Laura", enums.QuoteStatusWon, "200.00", march)
	seedQuote(t, db, "José", enums.QuoteStatusSent, "50.00", april)
	require.NoError(t, db.Create(&models.CatalogItem{ID: uuid.New(), Name: "Sellador", UnitPrice: decimal.NewFromInt(10)}).Error)

	adminMetrics, err := svc.Metrics(ctx, auth.Actor{Name: "admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	require.EqualValues(t, 3, adminMetrics.KPIs.TotalQuotes)
	require.Equal(t, "350.00", adminMetrics.KPIs.TotalAmount.StringFixed(2))
	require.EqualValues(t, 1, adminMetrics.KPIs.CatalogItems)
	require.Len(t, adminMetrics.Series, 2)
	require.Equal(t, "2026-03", adminMetrics.Series[0].Month)
	require.EqualValues(t, 2, adminMetrics.Series[0].Count)
	require.Equal(t, "300.00", adminMetrics.Series[0].Amount.StringFixed(2))

	userMetrics, err := svc.Metrics(ctx, auth.Actor{Name: "laura martínez", Role: enums.UserRoleUser})
	require.NoError(t, err)
	require.EqualValues(t, 2, userMetrics.KPIs.TotalQuotes)
	require.Equal(t, "300.00", userMetrics.KPIs.TotalAmount.StringFixed(2))
	require.Len(t, userMetrics.Series, 1)
}

func TestService_Metrics_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	metrics, err := svc.Metrics(context.Background(), auth.Actor{Name: "admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, metrics.Series)
	require.Empty(t, metrics.Series)
	require.EqualValues(t, 0, metrics.KPIs.TotalQuotes)
}

func TestService_Breakdown(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Now()

	seedQuote(t, db, "Laura", enums.QuoteStatusPending, "1.00", now)
	seedQuote(t, db, "Laura", enums.QuoteStatusPending, "1.00", now)
	seedQuote(t, db, "Laura", enums.QuoteStatusWon, "1.00", now)
	seedQuote(t, db, "José", enums.QuoteStatusLost, "1.00", now)

	breakdown, err := svc.Breakdown(ctx, auth.Actor{Name: "admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	require.Equal(t, []string{"SENT", "PENDING", "WON", "LOST"}, breakdown.Labels)
	require.Equal(t, []int64{0, 2, 1, 1}, breakdown.Counts)
	require.EqualValues(t, 4, breakdown.Total)
	require.InDelta(t, 50.0, breakdown.Percentages[1], 0.001)

	scoped, err := svc.Breakdown(ctx, auth.Actor{Name: "josé luis", Role: enums.UserRoleUser})
	require.NoError(t, err)
	require.EqualValues(t, 1, scoped.Total)
	require.Equal(t, []int64{0, 0, 0, 1}, scoped.Counts)
}

func TestService_Breakdown_Empty(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	breakdown, err := svc.Breakdown(context.Background(), auth.Actor{Name: "admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	require.EqualValues(t, 0, breakdown.Total)
	require.Equal(t, []float64{0, 0, 0, 0}, breakdown.Percentages)
}
