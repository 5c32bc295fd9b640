package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.AuditLogEntry{}))

	svc, err := NewService(NewRepository(conn), logger.New(logger.Options{ServiceName: "audit-test", Level: logger.ParseLevel("error")}))
	require.NoError(t, err)
	return svc, conn
}

func TestRecordAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, Entry{
		UserName:   "laura martínez",
		Role:       "USER",
		Method:     "POST",
		Path:       "/api/v1/quotes",
		Route:      "/api/v1/quotes",
		StatusCode: 201,
		FormKeys:   []string{"client_name", "password", "lines"},
		Action:     "quote_create",
	})
	svc.Record(ctx, Entry{
		UserName:   "admin",
		Role:       "ADMIN",
		Method:     "GET",
		Path:       "/api/v1/quotes",
		Route:      "/api/v1/quotes",
		StatusCode: 200,
	})

	result, err := svc.List(ctx, ListFilter{Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.Total)
	require.Len(t, result.Entries, 2)

	filtered, err := svc.List(ctx, ListFilter{UserName: "laura", Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 1, filtered.Total)
	entry := filtered.Entries[0]
	require.Equal(t, "quote_create", entry.Action)
	require.Contains(t, entry.FormKeys, "[redacted]")
	require.NotContains(t, entry.FormKeys, "password")

	byMethod, err := svc.List(ctx, ListFilter{Method: "get", Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 1, byMethod.Total)
}

func TestPurge(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, Entry{Method: "GET", Path: "/old", OccurredAt: time.Now().UTC().Add(-100 * 24 * time.Hour)})
	svc.Record(ctx, Entry{Method: "GET", Path: "/recent"})

	deleted, err := svc.Purge(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.AuditLogEntry{}).Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)

	// zero retention disables purging
	deleted, err = svc.Purge(ctx, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)
}

func TestMaskKeys(t *testing.T) {
	require.Nil(t, MaskKeys(nil))
	masked := MaskKeys([]string{"nombre", "Password", "TOKEN", "zona"})
	require.Equal(t, []string{"[redacted]", "[redacted]", "nombre", "zona"}, masked)
}
