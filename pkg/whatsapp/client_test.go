package whatsapp

import (
	"context"
	"errors"
	"testing"

	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poliutech/cotizador-backend/pkg/logger"
)

type fakeCreator struct {
	calls []twilioapi.CreateMessageParams
	err   error
}

func (f *fakeCreator) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.calls = append(f.calls, *params)
	if f.err != nil {
		return nil, f.err
	}
	return &twilioapi.ApiV2010Message{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
}

func TestSendNormalizesRecipient(t *testing.T) {
	fake := &fakeCreator{}
	client := &Client{api: fake, from: "whatsapp:+5215550000000", enabled: true, logger: testLogger()}

	if err := client.Send(context.Background(), "55 1234 5678", "hola"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	call := fake.calls[0]
	if got := *call.To; got != "whatsapp:+525512345678" {
		t.Fatalf("unexpected recipient %q", got)
	}
	if got := *call.Body; got != "hola" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestSendRejectsUnusableRecipient(t *testing.T) {
	fake := &fakeCreator{}
	client := &Client{api: fake, from: "whatsapp:+5215550000000", enabled: true, logger: testLogger()}

	if err := client.Send(context.Background(), "---", "hola"); err == nil {
		t.Fatal("expected error for recipient with no digits")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(fake.calls))
	}
}

func TestSendPropagatesTwilioError(t *testing.T) {
	fake := &fakeCreator{err: errors.New("boom")}
	client := &Client{api: fake, from: "whatsapp:+5215550000000", enabled: true, logger: testLogger()}

	if err := client.Send(context.Background(), "+5215551112222", "hola"); err == nil {
		t.Fatal("expected twilio error to propagate")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client := &Client{enabled: false, logger: testLogger()}
	if err := client.Send(context.Background(), "+5215551112222", "hola"); err != nil {
		t.Fatalf("disabled client must swallow sends, got %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client must report disabled")
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"whatsapp:+5215551234567", "whatsapp:+5215551234567"},
		{"+5215551234567", "whatsapp:+5215551234567"},
		{"5215551234567", "whatsapp:+5215551234567"},
		{"5551234567", "whatsapp:+525551234567"},
		{"55-512-34567", "whatsapp:+525551234567"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := NormalizeNumber(tc.in); got != tc.want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
