package infrastructure

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"tour-service/internal/config"
	"tour-service/internal/domain/providers"
)

// NewMailer picks the outbound mail provider from configuration.
func NewMailer(cfg config.MailConfig, logger zerolog.Logger) (providers.Mailer, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGridMailer(cfg.APIKey, cfg.Sender, logger), nil
	case "resend":
		return NewResendMailer(cfg.APIKey, cfg.Sender, logger), nil
	case "log", "":
		return NewLogMailer(logger), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}

type SendGridMailer struct {
	client *sendgrid.Client
	sender string
	logger zerolog.Logger
}

func NewSendGridMailer(apiKey, sender string, logger zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
		logger: logger,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg providers.Email) error {
	from := mail.NewEmail("Natours", m.sender)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, "")

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", response.StatusCode)
	}

	m.logger.Debug().Int("status", response.StatusCode).Str("to", msg.To).Msg("email sent")
	return nil
}

type ResendMailer struct {
	client *resend.Client
	sender string
	logger zerolog.Logger
}

func NewResendMailer(apiKey, sender string, logger zerolog.Logger) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		sender: sender,
		logger: logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg providers.Email) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	}

	response, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	m.logger.Debug().Str("id", response.Id).Str("to", msg.To).Msg("email sent")
	return nil
}

// LogMailer writes mail to the log instead of sending it. Used in
// development and tests.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg providers.Email) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("email")
	return nil
}
