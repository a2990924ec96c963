package middleware

import (
	"strconv"

	apierrors "github.com/anthonyhasrouny/portfolio/pkg/api/errors"
	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/metrics"
	"github.com/anthonyhasrouny/portfolio/pkg/ratelimit"
	"github.com/labstack/echo/v4"
)

// Rate limit response headers.
const (
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitObserver is notified of denied requests and store failures.
type RateLimitObserver interface {
	RecordQuoteSubmission(outcome string)
	RecordRateLimitStoreError()
}

// QuoteRateLimit enforces the fixed window before the request body is read.
// If the store fails the request is let through and the failure is logged.
func QuoteRateLimit(limiter *ratelimit.Limiter, observer RateLimitObserver, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ratelimit.ClientKey(c.Request())
			ctx := c.Request().Context()

			decision, err := limiter.Allow(ctx, key)
			if err != nil {
				log.Error("rate limit store unavailable, allowing request", "client", key, "error", err)
				if observer != nil {
					observer.RecordRateLimitStoreError()
				}
				return next(c)
			}

			setRateLimitHeaders(c, decision)
			if !decision.Allowed {
				retryAfter := decision.RetryAfter(limiter.Now())
				c.Response().Header().Set(HeaderRetryAfter, strconv.Itoa(int(retryAfter.Seconds())))

				log.Warn("quote rate limit exceeded", "client", key, "count", decision.Count)
				if observer != nil {
					observer.RecordQuoteSubmission(metrics.OutcomeRateLimited)
				}
				return apierrors.Respond(c, domain.NewRateLimitedError())
			}

			return next(c)
		}
	}
}

func setRateLimitHeaders(c echo.Context, d ratelimit.Decision) {
	h := c.Response().Header()
	h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
}
