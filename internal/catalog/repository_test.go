package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CatalogItem{}))
	return conn
}

func seedItem(t *testing.T, db *gorm.DB, name, unit string, price string) *models.CatalogItem {
	t.Helper()
	item := &models.CatalogItem{
		ID:        uuid.New(),
		Name:      name,
		Unit:      unit,
		UnitPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepository_FindByNameInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seedItem(t, db, "Impermeabilizante Acrílico", "cubeta", "1850.00")

	found, err := repo.FindByNameInsensitive(context.Background(), "  impermeabilizante acrílico ")
	require.NoError(t, err)
	require.Equal(t, "Impermeabilizante Acrílico", found.Name)

	_, err = repo.FindByNameInsensitive(context.Background(), "no existe")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seedItem(t, db, "Pintura Epóxica", "litro", "420.00")
	seedItem(t, db, "Pintura Vinílica", "litro", "180.00")
	seedItem(t, db, "Sellador Poliuretano", "cartucho", "95.00")

	rows, total, err := repo.List(context.Background(), ListFilter{
		Query: "pintura",
		Page:  pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	require.Equal(t, "Pintura Epóxica", rows[0].Name)

	rows, total, err = repo.List(context.Background(), ListFilter{
		Page: pagination.Params{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 1)
}

func TestRepository_SuggestCapsResults(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	for i := 0; i < 15; i++ {
		seedItem(t, db, fmt.Sprintf("Recubrimiento %02d", i), "m2", "10.00")
	}

	rows, err := repo.Suggest(context.Background(), "recubrimiento", 10)
	require.NoError(t, err)
	require.Len(t, rows, 10)
}

func TestRepository_FindOrCreateByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.FindOrCreateByName(ctx, nil, VivifyInput{
		Name:      "Primario Anticorrosivo",
		Unit:      "litro",
		UnitPrice: decimal.RequireFromString("310.555"),
		System:    "epóxico",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, "310.56", created.UnitPrice.StringFixed(2))

	// second call must return the same row, not a duplicate
	again, err := repo.FindOrCreateByName(ctx, nil, VivifyInput{
		Name:      "PRIMARIO ANTICORROSIVO",
		UnitPrice: decimal.RequireFromString("999.99"),
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "310.56", again.UnitPrice.StringFixed(2))

	var count int64
	require.NoError(t, db.Model(&models.CatalogItem{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	blank, err := repo.FindOrCreateByName(ctx, nil, VivifyInput{Name: "   "})
	require.NoError(t, err)
	require.Nil(t, blank)
}

func TestRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	item := seedItem(t, db, "Thinner Estándar", "litro", "75.00")

	require.NoError(t, repo.Delete(context.Background(), item.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), item.ID), gorm.ErrRecordNotFound)
}
