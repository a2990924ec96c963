package email

import (
	"context"
	"errors"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
)

// DispatchObserver records how long each provider call took and whether it succeeded.
type DispatchObserver interface {
	ObserveDispatch(provider string, ok bool, elapsed time.Duration)
}

// Service handles email sending
type Service struct {
	sender   Sender
	observer DispatchObserver
	logger   logger.Logger
}

// NewService creates a new email service.
// A nil sender puts the service in fail-closed mode: every Send returns a
// NOT_CONFIGURED error instead of pretending the email went out.
func NewService(sender Sender, observer DispatchObserver, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if sender == nil {
		log.Warn("email service has no provider configured, quote notifications will fail")
	} else {
		log.Info("email service initialized", "provider", sender.Name())
	}

	return &Service{
		sender:   sender,
		observer: observer,
		logger:   log,
	}
}

// Provider returns the configured provider name, or "none".
func (s *Service) Provider() string {
	if s.sender == nil {
		return "none"
	}
	return s.sender.Name()
}

// Send dispatches msg exactly once. Provider errors are logged with their
// details and returned as DISPATCH_FAILED wrapping the cause.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if s.sender == nil {
		return domain.NewNotConfiguredError("email provider")
	}
	if err := msg.Check(); err != nil {
		return domain.NewInternalError(err)
	}

	provider := s.sender.Name()
	start := time.Now()
	err := s.sender.Send(ctx, msg)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveDispatch(provider, err == nil, elapsed)
	}

	if err != nil {
		s.logger.Error("email dispatch failed",
			"provider", provider,
			"subject", msg.Subject,
			"recipients", len(msg.To),
			"error", err,
		)

		var derr *domain.DomainError
		if errors.As(err, &derr) {
			return err
		}
		return domain.NewDispatchError(provider, err)
	}

	s.logger.Info("email dispatched",
		"provider", provider,
		"recipients", len(msg.To),
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}
