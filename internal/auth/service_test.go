package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/security"
)

type stubUserRepo struct {
	user        *models.User
	lastLoginAt *time.Time
}

func (s *stubUserRepo) FindByNameInsensitive(_ context.Context, name string) (*models.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Name, name) {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.user
	return &copy, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLoginAt = &at
	return nil
}

type stubSessionManager struct {
	started []string
	revoked []string
}

func (s *stubSessionManager) Start(_ context.Context, accessID string, _ uuid.UUID) error {
	s.started = append(s.started, accessID)
	return nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func buildTestService(user *models.User, jwtCfg config.JWTConfig) (Service, *stubUserRepo, *stubSessionManager, error) {
	userRepo := &stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	return svc, userRepo, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "cotizador", ExpirationMinutes: 30}
}

func TestServiceLoginMintsTokenAndStartsSession(t *testing.T) {
	password := "Solis123!"
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Ing. José Solis",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, repo, sessions, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Name: "ing. josé solis", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Name != user.Name {
		t.Fatalf("expected name claim %q, got %q", user.Name, claims.Name)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected USER role claim, got %s", claims.Role)
	}
	if len(sessions.started) != 1 || sessions.started[0] != claims.ID {
		t.Fatalf("expected session started for jti %q, got %v", claims.ID, sessions.started)
	}
	if repo.lastLoginAt == nil {
		t.Fatalf("expected last login to be stamped")
	}
	if resp.User == nil || resp.User.Name != user.Name {
		t.Fatalf("expected user profile in response")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Laura Martínez",
		PasswordHash: mustHashPassword(t, "correct-horse"),
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}

	svc, _, sessions, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Name: user.Name, Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if len(sessions.started) != 0 {
		t.Fatalf("no session should start on failed login")
	}
}

func TestServiceLoginRejectsUnknownAndInactiveUsers(t *testing.T) {
	password := "secret-pass"
	inactive := &models.User{
		ID:           uuid.New(),
		Name:         "Baja Temporal",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleUser,
		IsActive:     false,
	}

	svc, _, _, err := buildTestService(inactive, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Name: "nobody", Password: password})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Name: inactive.Name, Password: password})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "access-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-123" {
		t.Fatalf("expected session revoked, got %v", sessions.revoked)
	}

	err = svc.Logout(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank access id, got %v", err)
	}
}
