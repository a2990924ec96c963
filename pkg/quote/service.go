package quote

import (
	"context"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/email"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
)

// Mailer delivers a rendered notification.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// Recipients identifies who sends and who receives quote notifications.
type Recipients struct {
	FromName  string
	FromEmail string
	To        []string
}

// Service accepts quote requests and turns each valid one into exactly one
// notification email.
type Service struct {
	validator  *Validator
	renderer   *Renderer
	mailer     Mailer
	recipients Recipients
	logger     logger.Logger
}

// NewService creates a new quote service
func NewService(v *Validator, r *Renderer, mailer Mailer, recipients Recipients, log logger.Logger) *Service {
	return &Service{
		validator:  v,
		renderer:   r,
		mailer:     mailer,
		recipients: recipients,
		logger:     log.With("component", "quote"),
	}
}

// Submit validates req and dispatches the notification. Nothing is sent when
// validation fails. A dispatch failure is returned as-is and never retried.
func (s *Service) Submit(ctx context.Context, req models.QuoteRequest) error {
	req = req.Normalized()
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if len(s.recipients.To) == 0 {
		return domain.NewNotConfiguredError("quote recipient")
	}

	rendered, err := s.renderer.Render(req)
	if err != nil {
		return domain.NewInternalError(err)
	}

	msg := email.Message{
		FromName:  s.recipients.FromName,
		FromEmail: s.recipients.FromEmail,
		To:        s.recipients.To,
		ReplyTo:   req.Email,
		Subject:   rendered.Subject,
		HTML:      rendered.HTML,
		Text:      rendered.Text,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	s.logger.Info("quote request forwarded",
		"project_type", req.ProjectType,
		"timeline", req.Timeline,
		"budget_range", req.BudgetRange,
	)
	return nil
}
