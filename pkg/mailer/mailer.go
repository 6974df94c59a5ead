package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/webqianduansong/shn-jade-backend/pkg/config"
	"github.com/webqianduansong/shn-jade-backend/pkg/logger"
)

const senderName = "SHN Jade"

// Mailer sends transactional storefront email through SendGrid. When no API
// key is configured every send becomes a logged no-op so local environments
// work without credentials.
type Mailer struct {
	apiKey string
	from   string
	logg   *logger.Logger
}

// New builds a mailer from config. A missing API key is allowed.
func New(cfg config.SendgridConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.APIKey != "" && cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from address is required when an api key is set")
	}
	return &Mailer{
		apiKey: cfg.APIKey,
		from:   cfg.DefaultFrom,
		logg:   logg,
	}, nil
}

// Enabled reports whether a SendGrid key is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.apiKey != ""
}

// Send delivers a plain-text email, wrapping it in minimal HTML.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("to address is required")
	}
	if !m.Enabled() {
		m.logg.Info(m.logg.WithFields(ctx, map[string]any{
			"to":      to,
			"subject": subject,
		}), "sendgrid disabled, skipping email")
		return nil
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(senderName, m.from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", response.StatusCode, response.Body)
	}

	m.logg.Info(m.logg.WithFields(ctx, map[string]any{
		"to":      to,
		"subject": subject,
		"status":  response.StatusCode,
	}), "email sent")
	return nil
}

// SendOrderPaid emails the payment confirmation for an order.
func (m *Mailer) SendOrderPaid(ctx context.Context, to, orderNumber string, totalCents int, currency string) error {
	subject := fmt.Sprintf("Payment received for order %s", orderNumber)
	body := fmt.Sprintf(
		"Thank you for your purchase.\n\nOrder %s is confirmed and paid (%s %d.%02d).\nWe will email you again once it ships.",
		orderNumber, currency, totalCents/100, totalCents%100,
	)
	return m.Send(ctx, to, subject, body)
}
