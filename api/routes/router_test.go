package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/poliutech/cotizador-backend/internal/audit"
	authsvc "github.com/poliutech/cotizador-backend/internal/auth"
	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/internal/dashboard"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	pkgAuth "github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/auth/session"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
	"github.com/poliutech/cotizador-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubQuotesService struct{}

// Create implements [quotes.Service].
func (s stubQuotesService) Create(ctx context.Context, actor pkgAuth.Actor, input quotes.QuoteInput) (*models.Quote, error) {
	panic("unimplemented")
}

// Update implements [quotes.Service].
func (s stubQuotesService) Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input quotes.QuoteInput) (*models.Quote, error) {
	panic("unimplemented")
}

// Get implements [quotes.Service].
func (s stubQuotesService) Get(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*models.Quote, error) {
	panic("unimplemented")
}

func (s stubQuotesService) List(ctx context.Context, actor pkgAuth.Actor, query quotes.ListQuery) (*quotes.ListResult, error) {
	return &quotes.ListResult{}, nil
}

// ChangeStatus implements [quotes.Service].
func (s stubQuotesService) ChangeStatus(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, status string) (*models.Quote, error) {
	panic("unimplemented")
}

// Delete implements [quotes.Service].
func (s stubQuotesService) Delete(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

// BulkDelete implements [quotes.Service].
func (s stubQuotesService) BulkDelete(ctx context.Context, actor pkgAuth.Actor, ids []uuid.UUID) (int64, error) {
	panic("unimplemented")
}

type stubClientsService struct{}

func (s stubClientsService) List(ctx context.Context, actor pkgAuth.Actor, query string, page pagination.Params) (*clients.ListResult, error) {
	return &clients.ListResult{}, nil
}

// Get implements [clients.Service].
func (s stubClientsService) Get(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) (*models.Client, error) {
	panic("unimplemented")
}

// Create implements [clients.Service].
func (s stubClientsService) Create(ctx context.Context, actor pkgAuth.Actor, input clients.ClientInput) (*models.Client, error) {
	panic("unimplemented")
}

// Update implements [clients.Service].
func (s stubClientsService) Update(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID, input clients.ClientInput) (*models.Client, error) {
	panic("unimplemented")
}

// Delete implements [clients.Service].
func (s stubClientsService) Delete(ctx context.Context, actor pkgAuth.Actor, id uuid.UUID) error {
	panic("unimplemented")
}

func (s stubClientsService) Suggest(ctx context.Context, actor pkgAuth.Actor, q string) ([]clients.Suggestion, error) {
	return nil, nil
}

// ExportRows implements [clients.Service].
func (s stubClientsService) ExportRows(ctx context.Context, actor pkgAuth.Actor) ([]models.Client, error) {
	panic("unimplemented")
}

// Import implements [clients.Service].
func (s stubClientsService) Import(ctx context.Context, req clients.ImportRequest) (*clients.ImportReport, error) {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (s stubCatalogService) List(ctx context.Context, query string, page pagination.Params) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

// Get implements [catalog.Service].
func (s stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	panic("unimplemented")
}

// Create implements [catalog.Service].
func (s stubCatalogService) Create(ctx context.Context, input catalog.ItemInput) (*models.CatalogItem, error) {
	panic("unimplemented")
}

// Update implements [catalog.Service].
func (s stubCatalogService) Update(ctx context.Context, id uuid.UUID, input catalog.ItemInput) (*models.CatalogItem, error) {
	panic("unimplemented")
}

// Delete implements [catalog.Service].
func (s stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (s stubCatalogService) Suggest(ctx context.Context, q string) ([]catalog.Suggestion, error) {
	return nil, nil
}

// ExportRows implements [catalog.Service].
func (s stubCatalogService) ExportRows(ctx context.Context) ([]models.CatalogItem, error) {
	panic("unimplemented")
}

// Import implements [catalog.Service].
func (s stubCatalogService) Import(ctx context.Context, req catalog.ImportRequest) (*catalog.ImportReport, error) {
	panic("unimplemented")
}

type stubDashboardService struct{}

func (s stubDashboardService) Metrics(ctx context.Context, actor pkgAuth.Actor) (*dashboard.Metrics, error) {
	return &dashboard.Metrics{}, nil
}

func (s stubDashboardService) Breakdown(ctx context.Context, actor pkgAuth.Actor) (*dashboard.StatusBreakdown, error) {
	return &dashboard.StatusBreakdown{}, nil
}

type stubAuditService struct{}

func (stubAuditService) Record(ctx context.Context, entry audit.Entry) {}

func (stubAuditService) List(ctx context.Context, filter audit.ListFilter) (*audit.ListResult, error) {
	return &audit.ListResult{}, nil
}

func (stubAuditService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

type stubReminderJob struct {
	ran bool
}

func (j *stubReminderJob) Name() string {
	return "stub-reminder"
}

func (j *stubReminderJob) Run(ctx context.Context) error {
	j.ran = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "cotizador",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, job *stubReminderJob) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		Services{
			Auth:        stubAuthService{},
			Quotes:      stubQuotesService{},
			Clients:     stubClientsService{},
			Catalog:     stubCatalogService{},
			Dashboard:   stubDashboardService{},
			Audit:       stubAuditService{},
			Notifier:    nil,
			ReminderJob: job,
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Name:   "Ing. Test",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), &stubReminderJob{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubReminderJob{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestDashboardMetricsWithUserRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/audit", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/audit", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestQuoteBulkDeleteRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/bulk-delete", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
}

func TestClientImportRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubReminderJob{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/import", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
}

func TestAdminRunRemindersTriggersSweep(t *testing.T) {
	cfg := testConfig()
	job := &stubReminderJob{}
	router := newTestRouter(cfg, job)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/debug/run-reminders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !job.ran {
		t.Fatalf("expected reminder job to run")
	}
}
