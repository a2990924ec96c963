package email

import (
	"context"
	"fmt"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridSender sends email using the SendGrid v3 API
type SendGridSender struct {
	apiKey string
	host   string
}

// SendGridOption customizes a SendGridSender.
type SendGridOption func(*SendGridSender)

// WithSendGridHost points the sender at another API host, e.g. a test server.
func WithSendGridHost(host string) SendGridOption {
	return func(s *SendGridSender) {
		s.host = host
	}
}

// NewSendGridSender creates a SendGrid sender. An empty key is accepted so the
// process can start; Send then fails with NOT_CONFIGURED.
func NewSendGridSender(apiKey string, opts ...SendGridOption) *SendGridSender {
	s := &SendGridSender{apiKey: apiKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Sender
func (s *SendGridSender) Name() string { return "sendgrid" }

// Send implements Sender
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return domain.NewNotConfiguredError("SENDGRID_API_KEY")
	}

	client := sendgrid.NewSendClient(s.apiKey)
	if s.host != "" {
		client.BaseURL = s.host + sendGridEndpoint
	}

	response, err := client.SendWithContext(ctx, buildSendGridMail(msg))
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func buildSendGridMail(msg Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.FromName, msg.FromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)

	// SendGrid requires text/plain to precede text/html.
	if msg.Text != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	return m
}
