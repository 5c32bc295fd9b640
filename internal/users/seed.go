package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/security"
)

// SeedAdmin creates the configured bootstrap admin if no account with that
// name exists yet. It is idempotent and a no-op when seeding is not
// configured.
func SeedAdmin(ctx context.Context, repo *Repository, seedCfg config.SeedConfig, pwCfg config.PasswordConfig, logg *logger.Logger) error {
	name := strings.TrimSpace(seedCfg.AdminName)
	if name == "" || seedCfg.AdminPassword == "" {
		return nil
	}

	_, err := repo.FindByNameInsensitive(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(seedCfg.AdminPassword, pwCfg)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return err
	}

	logg.Info(logg.WithField(ctx, "user", name), "seeded bootstrap admin account")
	return nil
}
