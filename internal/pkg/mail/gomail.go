package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender.
	From string
	// InsecureSkipVerify disables TLS certificate checks (local mail catchers only).
	InsecureSkipVerify bool
}

// SMTP is a Mail implementation backed by gomail.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP returns an SMTP mailer.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mail: smtp host and port are required")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local catchers
	}

	return &SMTP{dialer: dialer, from: cfg.From}, nil
}

// Send dials the server and sends msg.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send %q: %w", msg.Subject, err)
	}

	return nil
}

func (s *SMTP) build(msg Message) (*gomail.Message, error) {
	from, err := msg.validate(s.from)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	return m, nil
}

// Close is a no-op; gomail dials per message.
func (s *SMTP) Close() error {
	return nil
}

// Log is a Mail that only logs message metadata.
type Log struct {
	from string
}

// NewLog returns a Log mailer.
func NewLog(from string) *Log {
	return &Log{from: from}
}

// Send logs msg without its body.
func (l *Log) Send(ctx context.Context, msg Message) error {
	from, err := msg.validate(l.from)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "mail not delivered (log driver)", "from", from, "to", msg.To, "subject", msg.Subject)
	return nil
}

// Close is a no-op.
func (l *Log) Close() error {
	return nil
}
