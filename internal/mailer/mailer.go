// Package mailer delivers rendered campaign emails over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

// Message is one outbound email with an HTML body.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	HTML      string
}

// Transport sends messages through one configured SMTP account.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Factory builds a Transport for an email configuration.
type Factory interface {
	Transport(cfg *model.EmailConfig) (Transport, error)
}

// ImplicitTLS reports whether a port expects TLS from the first byte.
// Every other port starts in plaintext and upgrades with STARTTLS when offered.
func ImplicitTLS(port int) bool {
	return port == 465
}

type SMTPTransport struct {
	Host   string
	Port   int
	dialer *mail.Dialer
}

func NewSMTPTransport(cfg *model.EmailConfig, timeout time.Duration) *SMTPTransport {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	d.SSL = ImplicitTLS(cfg.SMTPPort)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	if timeout > 0 {
		d.Timeout = timeout
	}
	return &SMTPTransport{Host: cfg.SMTPHost, Port: cfg.SMTPPort, dialer: d}
}

// Send opens a connection, delivers msg and closes the connection.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", m.FormatAddress(msg.FromEmail, msg.FromName))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := t.dialer.DialAndSend(m); err != nil {
		logger.From(ctx).Debug("smtp send failed",
			logger.String("host", t.Host),
			logger.Int("port", t.Port),
			logger.Email(msg.To),
			logger.Err(err),
		)
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SMTPFactory builds a fresh SMTPTransport per configuration.
type SMTPFactory struct {
	Timeout time.Duration
}

func (f SMTPFactory) Transport(cfg *model.EmailConfig) (Transport, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("email configuration %s has no SMTP endpoint", cfg.ID)
	}
	return NewSMTPTransport(cfg, f.Timeout), nil
}

var (
	_ Transport = (*SMTPTransport)(nil)
	_ Factory   = SMTPFactory{}
)
