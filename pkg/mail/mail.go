package mail

import (
	"context"
	"fmt"
	"net/mail"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/pkg/config"
)

// Message is one outbound HTML email to a single recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Recipient renders the RFC 5322 address of the recipient.
func (m Message) Recipient() string {
	addr := mail.Address{Name: m.ToName, Address: m.To}
	return addr.String()
}

// Sender is the sendEmail(to, subject, html) capability.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// NewSender selects the configured transport.
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	switch cfg.Provider {
	case config.MailProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST")
		}
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from), nil
	case config.MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires SENDGRID_API_KEY")
		}
		return NewSendGridSender(cfg.SendGridAPIKey, from), nil
	case config.MailProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// LogSender writes emails to the logger instead of delivering them. Used in
// development and whenever no provider is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email (log transport)",
		zap.String("to", msg.Recipient()),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
