package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/labstack/echo/v4"
)

// Messages returned to clients. 5xx messages are fixed so provider and
// runtime details never leave the server.
const (
	MsgInvalidBody    = "Invalid request body"
	MsgRateLimited    = "Too many requests. Please try again later."
	MsgDispatchFailed = "Failed to send email"
	MsgInternal       = "Internal server error"
	MsgNotFound       = "Not found"
	MsgBodyTooLarge   = "Request body too large"
)

// BadRequest returns a 400 with a caller-safe message
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: message,
		Code:  domain.ErrCodeBadRequest,
	})
}

// ValidationError returns a 400 listing every failing field
func ValidationError(c echo.Context, err error) error {
	message := domain.MessageOf(err)
	if message == "" {
		message = "Invalid request data"
	}
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:  message,
		Code:   domain.ErrCodeValidation,
		Fields: domain.FieldsOf(err),
	})
}

// RateLimitError returns a 429. Callers set Retry-After and X-RateLimit-*
// headers before calling it.
func RateLimitError(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error: MsgRateLimited,
		Code:  domain.ErrCodeRateLimited,
	})
}

// DispatchError returns a generic 500 for a notification that could not be sent
func DispatchError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: MsgDispatchFailed,
		Code:  domain.ErrCodeDispatchFailed,
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: MsgInternal,
		Code:  domain.ErrCodeInternal,
	})
}

// Respond writes the response matching err's domain code.
func Respond(c echo.Context, err error) error {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation:
		return ValidationError(c, err)
	case domain.ErrCodeBadRequest:
		return BadRequest(c, domain.MessageOf(err))
	case domain.ErrCodeRateLimited:
		return RateLimitError(c)
	case domain.ErrCodeDispatchFailed, domain.ErrCodeNotConfigured:
		return DispatchError(c)
	default:
		return InternalError(c)
	}
}

// HTTPErrorHandler is the outermost error boundary. Anything a handler or
// middleware returns ends up here as a JSON ErrorResponse.
func HTTPErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		req := c.Request()
		var (
			he   *echo.HTTPError
			werr error
		)
		switch {
		case errors.As(err, &he):
			if he.Code >= http.StatusInternalServerError {
				log.Error("request failed", "method", req.Method, "path", req.URL.Path, "status", he.Code, "error", err)
			}
			werr = c.JSON(he.Code, models.ErrorResponse{
				Error: httpErrorMessage(he),
				Code:  statusCode(he.Code),
			})
		case domain.GetErrorCode(err) != domain.ErrCodeInternal:
			werr = Respond(c, err)
		default:
			log.Error("unhandled error", "method", req.Method, "path", req.URL.Path, "error", err)
			werr = InternalError(c)
		}

		if werr != nil {
			log.Error("failed to write error response", "error", werr)
		}
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch he.Code {
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusRequestEntityTooLarge:
		return MsgBodyTooLarge
	case http.StatusTooManyRequests:
		return MsgRateLimited
	}
	if he.Code >= http.StatusInternalServerError {
		return MsgInternal
	}
	if msg, ok := he.Message.(string); ok && msg != "" {
		return msg
	}
	return http.StatusText(he.Code)
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrCodeBadRequest
	case http.StatusTooManyRequests:
		return domain.ErrCodeRateLimited
	}
	if status >= http.StatusInternalServerError {
		return domain.ErrCodeInternal
	}
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("HTTP_%d", status)
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
