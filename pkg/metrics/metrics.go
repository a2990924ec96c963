package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quote submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	QuoteSubmissions *prometheus.CounterVec
	EmailDispatch    *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimitStoreErrors prometheus.Counter
	RateLimitTrackedKeys prometheus.Gauge
	RateLimitSwept       prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 65536},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 500, 1000, 5000, 10000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		QuoteSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_submissions_total",
				Help: "Total number of quote submissions by outcome",
			},
			[]string{"outcome"}, // accepted, invalid, rate_limited, failed
		),
		EmailDispatch: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "email_dispatch_duration_seconds",
				Help:    "Email provider call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "status"}, // status: success, error
		),

		// Rate limiter metrics
		RateLimitStoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "quote_rate_limit_store_errors_total",
			Help: "Rate limit store failures (requests were allowed through)",
		}),
		RateLimitTrackedKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quote_rate_limit_tracked_keys",
			Help: "Caller windows held by the in-memory rate limit store",
		}),
		RateLimitSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "quote_rate_limit_swept_total",
			Help: "Expired caller windows removed by the sweep job",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordQuoteSubmission increments the submissions counter for outcome
func (m *Metrics) RecordQuoteSubmission(outcome string) {
	m.QuoteSubmissions.WithLabelValues(outcome).Inc()
}

// ObserveDispatch records an email provider call
func (m *Metrics) ObserveDispatch(provider string, ok bool, elapsed time.Duration) {
	status := "error"
	if ok {
		status = "success"
	}
	m.EmailDispatch.WithLabelValues(provider, status).Observe(elapsed.Seconds())
}

// RecordRateLimitStoreError increments the store failure counter
func (m *Metrics) RecordRateLimitStoreError() {
	m.RateLimitStoreErrors.Inc()
}

// RecordSweep records a sweep run
func (m *Metrics) RecordSweep(removed, remaining int) {
	m.RateLimitSwept.Add(float64(removed))
	m.RateLimitTrackedKeys.Set(float64(remaining))
}
