// Package notify turns quote lifecycle events into WhatsApp messages for
// the sales administrators. Sends are best effort and never block or fail
// the operation that triggered them.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/db/models"
	"github.com/poliutech/cotizador-backend/pkg/enums"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/metrics"
	"github.com/poliutech/cotizador-backend/pkg/money"
)

// sendTimeout bounds one detached delivery attempt.
const sendTimeout = 15 * time.Second

// Event labels for metrics.
const (
	eventQuoteCreated  = "quote_created"
	eventQuoteUpdated  = "quote_updated"
	eventStatusChanged = "status_changed"
	eventReminder      = "reminder"
	eventTest          = "test"
)

// sender is the WhatsApp surface the service needs.
type sender interface {
	Enabled() bool
	Send(ctx context.Context, to, body string) error
}

// Service fans quote events out to the configured recipients.
type Service struct {
	sender  sender
	primary string
	all     []string
	metrics *metrics.NotificationMetrics
	logger  *logger.Logger
}

// NewService constructs the notification service. The primary recipient
// receives routine traffic; the full list is reserved for broadcasts so
// provider rate limits stay comfortable.
func NewService(s sender, cfg config.WhatsAppConfig, m *metrics.NotificationMetrics, logg *logger.Logger) (*Service, error) {
	if s == nil {
		return nil, fmt.Errorf("whatsapp sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	primary := strings.TrimSpace(cfg.PrimaryRecipient)
	if primary == "" && len(cfg.Recipients) > 0 {
		primary = cfg.Recipients[0]
	}

	return &Service{
		sender:  s,
		primary: primary,
		all:     cfg.Recipients,
		metrics: m,
		logger:  logg,
	}, nil
}

// QuoteCreated announces a freshly issued quote.
func (s *Service) QuoteCreated(ctx context.Context, quote *models.Quote) {
	body := fmt.Sprintf(
		"🧾 *Nueva Cotización Creada*\nFolio: *%s*\nEstatus: *%s*\nFecha (UTC): %s\nTotal: %s",
		quote.Folio,
		quote.Status,
		quote.CreatedAt.UTC().Format("02/01/2006 15:04"),
		money.Format(quote.Total),
	)
	s.dispatch(ctx, eventQuoteCreated, body)
}

// QuoteUpdated announces an edit to an existing quote.
func (s *Service) QuoteUpdated(ctx context.Context, quote *models.Quote) {
	body := fmt.Sprintf(
		"🔄 *Actualización de Cotización*\nFolio: *%s*\nEstatus: *%s*\nTotal: %s",
		quote.Folio,
		quote.Status,
		money.Format(quote.Total),
	)
	s.dispatch(ctx, eventQuoteUpdated, body)
}

// QuoteStatusChanged announces a status transition.
func (s *Service) QuoteStatusChanged(ctx context.Context, quote *models.Quote, from, to enums.QuoteStatus) {
	body := fmt.Sprintf(
		"🔄 *Actualización de estatus*\nFolio: *%s*\nAnterior: %s\nNuevo: *%s*\nTotal: %s",
		quote.Folio,
		from,
		to,
		money.Format(quote.Total),
	)
	s.dispatch(ctx, eventStatusChanged, body)
}

// SendReminder delivers one pending-quote reminder synchronously so the
// sweep only stamps quotes whose message actually went out.
func (s *Service) SendReminder(ctx context.Context, quote *models.Quote) error {
	body := fmt.Sprintf(
		"🔔 *Recordatorio: Cotización PENDIENTE*\nFolio: *%s*\nFecha (UTC): %s\nTotal: %s",
		quote.Folio,
		quote.CreatedAt.UTC().Format("02/01/2006 15:04"),
		money.Format(quote.Total),
	)
	return s.send(ctx, eventReminder, body)
}

// SendTest delivers the debug probe message synchronously.
func (s *Service) SendTest(ctx context.Context) error {
	return s.send(ctx, eventTest, "✅ Mensaje de prueba - Sistema Poliutech.")
}

// dispatch sends in a detached goroutine with its own deadline. The
// request that produced the event keeps going no matter what happens here.
func (s *Service) dispatch(ctx context.Context, event, body string) {
	if !s.sender.Enabled() || s.primary == "" {
		s.metrics.IncSkipped()
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(detached, sendTimeout)
		defer cancel()
		if err := s.send(sendCtx, event, body); err != nil {
			s.logger.Error(s.logger.WithField(sendCtx, "event", event), "whatsapp notification failed", err)
		}
	}()
}

func (s *Service) send(ctx context.Context, event, body string) error {
	if !s.sender.Enabled() || s.primary == "" {
		s.metrics.IncSkipped()
		return nil
	}

	start := time.Now()
	err := s.sender.Send(ctx, s.primary, body)
	s.metrics.ObserveSend(event, time.Since(start))
	if err != nil {
		s.metrics.IncFailed(event)
		return err
	}
	s.metrics.IncSent(event)
	return nil
}

// Broadcast sends the body to every configured recipient. Used by the
// admin debug surface only.
func (s *Service) Broadcast(ctx context.Context, body string) error {
	if !s.sender.Enabled() {
		s.metrics.IncSkipped()
		return nil
	}
	var lastErr error
	for _, to := range s.all {
		start := time.Now()
		err := s.sender.Send(ctx, to, body)
		s.metrics.ObserveSend(eventTest, time.Since(start))
		if err != nil {
			s.metrics.IncFailed(eventTest)
			lastErr = err
			continue
		}
		s.metrics.IncSent(eventTest)
	}
	return lastErr
}
