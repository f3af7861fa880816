package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"erp/internal/domain/notifications"
	"erp/internal/platform/config"
)

var ErrNoRecipient = errors.New("email: recipient address is empty")

type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, from, to, subject, body string) error {
	slog.Debug("email disabled, message not sent", "to", to, "subject", subject)
	return nil
}

const (
	transportImplicitTLS = "implicit-tls"
	transportStartTLS    = "starttls"
	transportPlain       = "plain"
)

type smtpMailer struct {
	cfg       config.Config
	transport string
	send      sendFunc
}

func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	switch {
	case cfg.SMTPImplicitTLS:
		return &smtpMailer{cfg: cfg, transport: transportImplicitTLS, send: smtp.SendMailTLS}
	case cfg.SMTPUseTLS:
		return &smtpMailer{cfg: cfg, transport: transportStartTLS, send: smtp.SendMail}
	default:
		slog.Warn("smtp configured without TLS", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return &smtpMailer{cfg: cfg, transport: transportPlain, send: sendPlain}
	}
}

// sendPlain delivers over an unencrypted connection, for relays on a trusted
// network that do not offer STARTTLS.
func sendPlain(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, to, r); err != nil {
		return err
	}
	return c.Quit()
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if from == "" {
		from = s.cfg.EmailFrom
	}

	var auth sasl.Client
	if s.cfg.SMTPUser != "" {
		auth = sasl.NewPlainClient("", s.cfg.SMTPUser, s.cfg.SMTPPassword)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	msg := buildMessage(from, to, subject, body)
	if err := s.send(addr, auth, from, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("email: send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) string {
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
	}
	return strings.Join(headers, "\r\n") + "\r\n" + body
}
