package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/security"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: "unused",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryFindByNameInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, db, "Ing. Antonio Azcona", enums.UserRoleUser)

	found, err := repo.FindByNameInsensitive(ctx, "ING. ANTONIO AZCONA")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindByNameInsensitive(ctx, "nobody")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, db, "Laura Martínez", enums.UserRoleAdmin)
	require.Nil(t, seeded.LastLoginAt)

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, seeded.ID, at))

	found, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	require.True(t, found.LastLoginAt.Equal(at))
}

func TestSeedAdmin(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "users-test"})
	ctx := context.Background()

	seedCfg := config.SeedConfig{AdminName: "Dirección General", AdminPassword: "Bootstrap123!"}

	require.NoError(t, SeedAdmin(ctx, repo, seedCfg, config.PasswordConfig{}, logg))

	created, err := repo.FindByNameInsensitive(ctx, "dirección general")
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleAdmin, created.Role)
	require.True(t, created.IsActive)

	ok, err := security.VerifyPassword("Bootstrap123!", created.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	// running again must not duplicate the account
	require.NoError(t, SeedAdmin(ctx, repo, seedCfg, config.PasswordConfig{}, logg))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSeedAdminSkipsWhenUnconfigured(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "users-test"})

	require.NoError(t, SeedAdmin(context.Background(), repo, config.SeedConfig{}, config.PasswordConfig{}, logg))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
