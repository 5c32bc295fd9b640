package quotes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/pkg/auth"
	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

type recordingNotifier struct {
	mu       sync.Mutex
	created  []string
	updated  []string
	statuses []string
}

func (n *recordingNotifier) QuoteCreated(_ context.Context, quote *models.Quote) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, quote.Folio)
}

func (n *recordingNotifier) QuoteUpdated(_ context.Context, quote *models.Quote) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, quote.Folio)
}

func (n *recordingNotifier) QuoteStatusChanged(_ context.Context, quote *models.Quote, from, to enums.QuoteStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, quote.Folio+":"+string(from)+">"+string(to))
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx.WithContext(ctx))
	})
}

type serviceHarness struct {
	svc      Service
	db       *gorm.DB
	repo     *Repository
	notifier *recordingNotifier
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	db := newTestDB(t)
	repo := NewRepository(db)
	notifier := &recordingNotifier{}

	svc, err := NewService(
		testTxRunner{db: db},
		repo,
		clients.NewRepository(db),
		catalog.NewRepository(db),
		notifier,
		config.FolioConfig{Prefix: "PTCH"},
		config.QuotesConfig{DefaultTaxRate: 16, DefaultCurrency: "MXN", ValidityDays: 30},
		logger.New(logger.Options{ServiceName: "quotes-test", Level: logger.ParseLevel("error")}),
	)
	require.NoError(t, err)

	return &serviceHarness{svc: svc, db: db, repo: repo, notifier: notifier}
}

func laura() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Name: "laura martínez", Role: enums.UserRoleUser}
}

func admin() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Name: "admin", Role: enums.UserRoleAdmin}
}

func sampleInput() QuoteInput {
	return QuoteInput{
		ClientName: "Constructora del Norte",
		ZoneName:   "Zona Norte",
		Lines: []LineInput{
			{Name: "Impermeabilizante", Unit: "cubeta", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.00")},
			{Name: "Sellador", Unit: "cartucho", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
}

func TestService_Create_ComputesTotalsAndFolio(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	quote, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)

	require.Equal(t, "PTCH-0001", quote.Folio)
	require.Equal(t, enums.QuoteStatusPending, quote.Status)
	require.Equal(t, "250.00", quote.Subtotal.StringFixed(2))
	require.Equal(t, "25.00", quote.DiscountTotal.StringFixed(2))
	require.Equal(t, "36.00", quote.TaxAmount.StringFixed(2))
	require.Equal(t, "261.00", quote.Total.StringFixed(2))
	require.Equal(t, "Laura", quote.Owner)
	require.NotNil(t, quote.ValidUntil)
	require.Equal(t, []string{"PTCH-0001"}, h.notifier.created)

	// the client and both catalog concepts were vivified
	require.NotNil(t, quote.ClientID)
	var clientCount, itemCount int64
	require.NoError(t, h.db.Model(&models.Client{}).Count(&clientCount).Error)
	require.NoError(t, h.db.Model(&models.CatalogItem{}).Count(&itemCount).Error)
	require.EqualValues(t, 1, clientCount)
	require.EqualValues(t, 2, itemCount)

	next, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)
	require.Equal(t, "PTCH-0002", next.Folio)
}

func TestService_Create_ValidatesInput(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	cases := []QuoteInput{
		{},
		{ClientName: "Acme"},
		{ClientName: "Acme", Lines: []LineInput{{Name: "", Quantity: decimal.NewFromInt(1)}}},
		{ClientName: "Acme", Lines: []LineInput{{Name: "Primario", Quantity: decimal.Zero}}},
		{ClientName: "Acme", Lines: []LineInput{{Name: "Primario", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-5)}}},
	}
	for i, input := range cases {
		_, err := h.svc.Create(ctx, laura(), input)
		require.Error(t, err, "case %d", i)
		var coded *pkgerrors.Error
		require.ErrorAs(t, err, &coded, "case %d", i)
		require.Equal(t, pkgerrors.CodeValidation, coded.Code(), "case %d", i)
	}
	require.Empty(t, h.notifier.created)
}

func TestService_Update_ReplacesLines(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	actor := laura()

	quote, err := h.svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)

	updated := sampleInput()
	updated.ZoneName = "Zona Sur"
	updated.Lines = []LineInput{
		{Name: "Recubrimiento Epóxico", Unit: "m2", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("25.00")},
	}

	result, err := h.svc.Update(ctx, actor, quote.ID, updated)
	require.NoError(t, err)
	require.Equal(t, quote.Folio, result.Folio)
	// 100.00 gross, 15% zone discount, 16% tax on 85.00
	require.Equal(t, "100.00", result.Subtotal.StringFixed(2))
	require.Equal(t, "15.00", result.DiscountTotal.StringFixed(2))
	require.Equal(t, "98.60", result.Total.StringFixed(2))

	loaded, err := h.repo.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	require.Equal(t, "Recubrimiento Epóxico", loaded.Lines[0].Name)

	var lineCount int64
	require.NoError(t, h.db.Model(&models.QuoteLine{}).Where("quote_id = ?", quote.ID).Count(&lineCount).Error)
	require.EqualValues(t, 1, lineCount)
	require.Equal(t, []string{quote.Folio}, h.notifier.updated)
}

func TestService_ChangeStatus(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	actor := laura()

	quote, err := h.svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)

	sent, err := h.svc.ChangeStatus(ctx, actor, quote.ID, "SENT")
	require.NoError(t, err)
	require.Equal(t, enums.QuoteStatusSent, sent.Status)
	require.Equal(t, []string{quote.Folio + ":PENDING>SENT"}, h.notifier.statuses)

	// same status is a no-op and does not notify again
	_, err = h.svc.ChangeStatus(ctx, actor, quote.ID, "SENT")
	require.NoError(t, err)
	require.Len(t, h.notifier.statuses, 1)

	_, err = h.svc.ChangeStatus(ctx, actor, quote.ID, "GANADA")
	require.Error(t, err)
}

func TestService_ChangeStatus_ReopenClearsReminderClock(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	actor := laura()

	quote, err := h.svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)

	_, err = h.svc.ChangeStatus(ctx, actor, quote.ID, "SENT")
	require.NoError(t, err)
	require.NoError(t, h.repo.StampNotified(ctx, quote.ID, time.Now()))

	reopened, err := h.svc.ChangeStatus(ctx, actor, quote.ID, "PENDING")
	require.NoError(t, err)
	require.Nil(t, reopened.LastNotifiedAt)

	loaded, err := h.repo.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.LastNotifiedAt)
}

func TestService_OwnerScoping(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	mine, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)

	other := auth.Actor{UserID: uuid.New(), Name: "josé luis", Role: enums.UserRoleUser}
	_, err = h.svc.Get(ctx, other, mine.ID)
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	// admins see everything
	got, err := h.svc.Get(ctx, admin(), mine.ID)
	require.NoError(t, err)
	require.Equal(t, mine.ID, got.ID)

	list, err := h.svc.List(ctx, other, ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 0, list.Total)

	list, err = h.svc.List(ctx, laura(), ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)
}

func TestService_Create_VivifiesClientPerOwner(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	theirs := &models.Client{ID: uuid.New(), Name: "Constructora del Norte", Owner: "Pedro"}
	require.NoError(t, h.db.Create(theirs).Error)

	// A representative never attaches to another owner's client record.
	first, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)
	require.NotNil(t, first.ClientID)
	require.NotEqual(t, theirs.ID, *first.ClientID)

	var attached models.Client
	require.NoError(t, h.db.First(&attached, "id = ?", *first.ClientID).Error)
	require.Equal(t, "Laura", attached.Owner)

	// The same representative reuses their own record on the next quote.
	second, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)
	require.NotNil(t, second.ClientID)
	require.Equal(t, *first.ClientID, *second.ClientID)

	var count int64
	require.NoError(t, h.db.Model(&models.Client{}).Where("LOWER(name) = ?", "constructora del norte").Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestService_DeleteRequiresAdmin(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	quote, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)

	err = h.svc.Delete(ctx, laura(), quote.ID)
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	require.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	require.NoError(t, h.svc.Delete(ctx, admin(), quote.ID))
	err = h.svc.Delete(ctx, admin(), quote.ID)
	require.ErrorAs(t, err, &coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestService_BulkDelete(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	a, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)
	b, err := h.svc.Create(ctx, laura(), sampleInput())
	require.NoError(t, err)

	_, err = h.svc.BulkDelete(ctx, laura(), []uuid.UUID{a.ID})
	require.Error(t, err)

	_, err = h.svc.BulkDelete(ctx, admin(), nil)
	require.Error(t, err)

	tooMany := make([]uuid.UUID, bulkDeleteMax+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err = h.svc.BulkDelete(ctx, admin(), tooMany)
	require.Error(t, err)

	deleted, err := h.svc.BulkDelete(ctx, admin(), []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
}
