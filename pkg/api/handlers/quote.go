package handlers

import (
	"context"
	"net/http"
	"time"

	apierrors "github.com/anthonyhasrouny/portfolio/pkg/api/errors"
	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/metrics"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// MsgEmailSent is returned when the notification was handed to the provider.
const MsgEmailSent = "Email sent successfully"

const defaultSubmitTimeout = 15 * time.Second

// QuoteSubmitter validates a request and dispatches its notification.
type QuoteSubmitter interface {
	Submit(ctx context.Context, req models.QuoteRequest) error
}

// SubmissionRecorder counts submissions by outcome.
type SubmissionRecorder interface {
	RecordQuoteSubmission(outcome string)
}

// QuoteHandler handles quote request submissions.
type QuoteHandler struct {
	quotes   QuoteSubmitter
	recorder SubmissionRecorder
	logger   logger.Logger
	timeout  time.Duration
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(quotes QuoteSubmitter, recorder SubmissionRecorder, log logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes:   quotes,
		recorder: recorder,
		logger:   log.With("handler", "quote"),
		timeout:  defaultSubmitTimeout,
	}
}

// Submit godoc
// @Summary Submit a quote request
// @Description Validate a project inquiry and email it to the site owner. Limited to 5 requests per minute per caller.
// @Tags Quote
// @Accept json
// @Produce json
// @Param request body models.QuoteRequest true "Quote request"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quote [post]
func (h *QuoteHandler) Submit(c echo.Context) error {
	var req models.QuoteRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		h.record(metrics.OutcomeInvalid)
		h.logger.Debug("rejected malformed quote body", "error", err)
		return apierrors.Respond(c, domain.NewBadRequestError(apierrors.MsgInvalidBody))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.quotes.Submit(ctx, req)
	switch {
	case err == nil:
		h.record(metrics.OutcomeAccepted)
		return c.JSON(http.StatusOK, models.SuccessResponse{
			Success: true,
			Message: MsgEmailSent,
		})

	case domain.IsValidation(err):
		h.record(metrics.OutcomeInvalid)
		return apierrors.ValidationError(c, err)

	case domain.IsDispatchFailed(err), domain.IsNotConfigured(err):
		h.record(metrics.OutcomeFailed)
		h.logger.Error("quote notification not sent", "error", err)
		h.capture(c, err)
		return apierrors.DispatchError(c)

	default:
		h.record(metrics.OutcomeFailed)
		h.logger.Error("quote submission failed", "error", err)
		h.capture(c, err)
		return apierrors.InternalError(c)
	}
}

func (h *QuoteHandler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordQuoteSubmission(outcome)
	}
}

func (h *QuoteHandler) capture(c echo.Context, err error) {
	hub := sentryecho.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_code", domain.GetErrorCode(err))
		hub.CaptureException(err)
	})
}
