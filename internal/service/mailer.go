package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
)

// OutboundMail is a single HTML email to one recipient.
type OutboundMail struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	From    models.SenderIdentity
}

// Mailer delivers one email. Implementations make a single attempt and honour ctx.
type Mailer interface {
	Send(ctx context.Context, msg OutboundMail) error
}

// SMTPConfig configures SMTPMailer.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string
	Timeout   time.Duration
}

// SMTPMailer sends mail through an SMTP relay. Senders that carry their own credentials
// authenticate as themselves, everyone else uses the relay account.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, out OutboundMail) error {
	msg, err := buildMessage(out)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions(out.From)...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", out.To, err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions(from models.SenderIdentity) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPolicy(tlsPolicy(m.cfg.TLSPolicy)),
	}

	username, password := m.cfg.Username, m.cfg.Password
	if from.HasCredentials() {
		username, password = from.Username, from.Password
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	return opts
}

func buildMessage(out OutboundMail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if out.From.Name != "" {
		if err := msg.FromFormat(out.From.Name, out.From.Address); err != nil {
			return nil, fmt.Errorf("invalid sender %q: %w", out.From.Address, err)
		}
	} else if err := msg.From(out.From.Address); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", out.From.Address, err)
	}
	if err := msg.AddToFormat(out.ToName, out.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", out.To, err)
	}
	msg.Subject(out.Subject)
	msg.SetBodyString(mail.TypeTextHTML, out.HTML)
	return msg, nil
}

func tlsPolicy(raw string) mail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mandatory", "required":
		return mail.TLSMandatory
	case "none", "off", "disabled":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// LogMailer only logs outgoing mail. It is used when MAIL_ENABLED is false.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, out OutboundMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := buildMessage(out); err != nil {
		return err
	}
	m.logger.Info("email suppressed",
		zap.String("to", out.To),
		zap.String("from", out.From.Address),
		zap.String("subject", out.Subject),
	)
	return nil
}
