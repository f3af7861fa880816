package email

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"

	"erp/internal/platform/config"
)

func TestNewDisabledReturnsNoop(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewSelectsTransport(t *testing.T) {
	base := config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 587}
	cases := []struct {
		name      string
		useTLS    bool
		implicit  bool
		transport string
	}{
		{"starttls", true, false, transportStartTLS},
		{"implicit tls wins", true, true, transportImplicitTLS},
		{"implicit only", false, true, transportImplicitTLS},
		{"plain", false, false, transportPlain},
	}
	for _, c := range cases {
		cfg := base
		cfg.SMTPUseTLS = c.useTLS
		cfg.SMTPImplicitTLS = c.implicit
		m, ok := New(cfg).(*smtpMailer)
		if !ok {
			t.Fatalf("%s: expected smtp mailer", c.name)
		}
		if m.transport != c.transport {
			t.Fatalf("%s: expected %s transport, got %s", c.name, c.transport, m.transport)
		}
		if m.send == nil {
			t.Fatalf("%s: expected a send function", c.name)
		}
	}
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom, gotBody string
	var gotTo []string
	var gotAuth sasl.Client
	m := &smtpMailer{
		cfg: config.Config{SMTPHost: "smtp.example.com", SMTPPort: 2525, SMTPUser: "payroll", SMTPPassword: "secret"},
		send: func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
			gotAddr, gotAuth, gotFrom, gotTo = addr, a, from, to
			b, _ := io.ReadAll(r)
			gotBody = string(b)
			return nil
		},
	}

	err := m.Send(context.Background(), "hr@example.com", "alice@example.com", "Payroll Notification - June 2024", "Dear Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" {
		t.Fatalf("expected smtp.example.com:2525, got %s", gotAddr)
	}
	if gotAuth == nil {
		t.Fatal("expected plain auth when a user is configured")
	}
	if gotFrom != "hr@example.com" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected envelope %s -> %v", gotFrom, gotTo)
	}
	if !strings.Contains(gotBody, "Subject: Payroll Notification - June 2024\r\n") {
		t.Fatalf("expected subject header, got %q", gotBody)
	}
	if !strings.HasSuffix(gotBody, "\r\n\r\nDear Alice") {
		t.Fatalf("expected body after blank line, got %q", gotBody)
	}
}

func TestSMTPMailerWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	m := &smtpMailer{
		cfg: config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25},
		send: func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
			if a != nil {
				t.Fatal("expected no auth without a user")
			}
			return boom
		},
	}
	if err := m.Send(context.Background(), "", "alice@example.com", "s", "b"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := m.Send(context.Background(), "", " ", "s", "b"); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected no recipient, got %v", err)
	}
}
