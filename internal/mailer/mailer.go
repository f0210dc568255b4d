// Package mailer delivers plain-text messages to users.
package mailer

import (
	"context"
	"fmt"
	"net"
	"slices"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/yukikurage/todo-list/internal/config"
)

// Message is a plain-text email addressed to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when a relay is configured, or a mailer that
// writes messages to the log otherwise.
func New(cfg *config.Config, logger zerolog.Logger) (Mailer, error) {
	if !cfg.MailEnabled() {
		return NewLogMailer(cfg.EmailHostUser, logger), nil
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer delivers messages through an SMTP relay. Every Send uses its
// own connection, so an SMTPMailer is safe for concurrent use.
type SMTPMailer struct {
	host    string
	options []mail.Option
	from    string
}

// NewSMTPMailer creates an SMTPMailer from the SMTP_* settings.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	// validate the settings up front instead of on the first send
	if _, err := mail.NewClient(cfg.SMTPHost, opts...); err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{host: cfg.SMTPHost, options: opts, from: cfg.EmailHostUser}, nil
}

// Send delivers msg over a new connection. A single attempt is made and the
// connection is closed before Send returns.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	var conn net.Conn
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		var d net.Dialer
		c, err := d.DialContext(ctx, network, address)
		conn = c
		return c, err
	}

	opts := append(slices.Clip(m.options), mail.WithDialContextFunc(dial))
	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := client.Send(email); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to deliver mail to %s: %w", msg.To, err)
	}

	// the message is accepted at this point, a failed QUIT does not undo it
	_ = client.Close()
	return nil
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)
	return email, nil
}

// LogMailer writes messages to the logger instead of sending them.
type LogMailer struct {
	from   string
	logger zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(from string, logger zerolog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

// Send logs msg.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if _, err := buildMessage(m.from, msg); err != nil {
		return err
	}

	m.logger.Info().
		Str("from", m.from).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent, smtp is not configured")
	return nil
}
