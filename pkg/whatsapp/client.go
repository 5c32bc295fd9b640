// Package whatsapp wraps the Twilio SDK for outbound WhatsApp messages.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poliutech/cotizador-backend/pkg/config"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

var errLoggerRequired = errors.New("whatsapp logger is required")

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// Client sends WhatsApp messages through Twilio. A client built from an
// incomplete configuration is a no-op sender, not an error; the app keeps
// working without messaging.
type Client struct {
	api     messageCreator
	from    string
	enabled bool
	logger  *logger.Logger
}

// NewClient initializes the Twilio wrapper. Missing credentials disable
// sending instead of failing startup.
func NewClient(ctx context.Context, cfg config.WhatsAppConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	if !cfg.Enabled() {
		logg.Warn(ctx, "whatsapp messaging not configured, sends will be skipped")
		return &Client{enabled: false, logger: logg}, nil
	}

	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rest.SetTimeout(timeout)

	logg.Info(ctx, "whatsapp client initialized")
	return &Client{
		api:     rest.Api,
		from:    NormalizeNumber(cfg.From),
		enabled: true,
		logger:  logg,
	}, nil
}

// Enabled reports whether the client will actually deliver messages.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Send delivers one message to the given recipient. The recipient may be a
// bare local number; it is normalized to the whatsapp:+52... form.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		return nil
	}

	normalized := NormalizeNumber(to)
	if normalized == "" {
		return fmt.Errorf("recipient %q has no usable digits", to)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(normalized)
	params.SetBody(body)

	if _, err := c.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}
