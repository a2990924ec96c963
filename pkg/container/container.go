package container

import (
	"context"
	"fmt"
	"time"

	"github.com/anthonyhasrouny/portfolio/config"
	apierrors "github.com/anthonyhasrouny/portfolio/pkg/api/errors"
	"github.com/anthonyhasrouny/portfolio/pkg/api/handlers"
	"github.com/anthonyhasrouny/portfolio/pkg/cache"
	"github.com/anthonyhasrouny/portfolio/pkg/email"
	"github.com/anthonyhasrouny/portfolio/pkg/jobs"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/metrics"
	custommw "github.com/anthonyhasrouny/portfolio/pkg/middleware"
	"github.com/anthonyhasrouny/portfolio/pkg/quote"
	"github.com/anthonyhasrouny/portfolio/pkg/ratelimit"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BodyLimit caps quote request bodies.
const BodyLimit = "64K"

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger logger.Logger

	// Infrastructure
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	Redis       *cache.Client
	MemoryStore *ratelimit.MemoryStore

	// Services
	QuoteLimiter  *ratelimit.Limiter
	GlobalLimiter *custommw.RateLimiter
	EmailService  *email.Service
	QuoteService  *quote.Service
	Cron          *jobs.CronManager

	// Handlers
	QuoteHandler   *handlers.QuoteHandler
	OptionsHandler *handlers.OptionsHandler
	HealthHandler  *handlers.HealthHandler

	sender email.Sender
}

// Option customizes a Container before services are built.
type Option func(*Container)

// WithSender replaces the provider selected by EMAIL_PROVIDER.
func WithSender(sender email.Sender) Option {
	return func(c *Container) { c.sender = sender }
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Container, error) {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Container{
		Config: cfg,
		Logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err := c.initServices(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	if c.Config.RateLimitBackend == config.BackendRedis {
		client, err := cache.NewClient(ctx, c.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("rate limit store: %w", err)
		}
		c.Redis = client
		c.Logger.Info("rate limit store ready", "backend", config.BackendRedis)
		return nil
	}

	c.MemoryStore = ratelimit.NewMemoryStore()
	c.Logger.Info("rate limit store ready", "backend", config.BackendMemory)
	return nil
}

func (c *Container) initServices(ctx context.Context) error {
	var store ratelimit.Store = c.MemoryStore
	if c.Redis != nil {
		store = ratelimit.NewRedisStore(c.Redis.Redis)
	}

	limiter, err := ratelimit.New(store, c.Config.QuoteRateLimitMax, c.Config.QuoteRateLimitWindow)
	if err != nil {
		return fmt.Errorf("quote limiter: %w", err)
	}
	c.QuoteLimiter = limiter
	c.GlobalLimiter = custommw.NewRateLimiter(c.Config.RateLimitRequestsPerMinute, c.Config.RateLimitBurst)

	if c.sender == nil {
		sender, err := newSender(ctx, c.Config, c.Logger)
		if err != nil {
			return err
		}
		c.sender = sender
	}
	c.EmailService = email.NewService(c.sender, c.Metrics, c.Logger)

	renderer, err := quote.NewRenderer(c.Config.SiteURL, c.Config.PhoneDefaultRegion)
	if err != nil {
		return fmt.Errorf("quote renderer: %w", err)
	}
	c.QuoteService = quote.NewService(
		quote.NewValidator(),
		renderer,
		c.EmailService,
		quote.Recipients{
			FromName:  c.Config.QuoteFromName,
			FromEmail: c.Config.QuoteFromEmail,
			To:        c.Config.QuoteToEmails,
		},
		c.Logger,
	)

	// Redis expires its own windows, so only the memory store needs sweeping.
	var windows jobs.WindowSweeper
	if c.MemoryStore != nil {
		windows = c.MemoryStore
	}
	c.Cron = jobs.NewCronManager(c.Config.RateLimitSweepSchedule, windows, c.GlobalLimiter, c.Metrics, c.Logger)
	if err := c.Cron.SetupJobs(); err != nil {
		return fmt.Errorf("cron jobs: %w", err)
	}

	return nil
}

func (c *Container) initHandlers() {
	storeName := config.BackendMemory
	var redis handlers.Pinger
	if c.Redis != nil {
		storeName = config.BackendRedis
		redis = c.Redis
	}

	c.QuoteHandler = handlers.NewQuoteHandler(c.QuoteService, c.Metrics, c.Logger)
	c.OptionsHandler = handlers.NewOptionsHandler(c.QuoteLimiter, c.Logger)
	c.HealthHandler = handlers.NewHealthHandler(storeName, redis, c.EmailService.Provider(), custommw.CurrentAPIVersion.Version, c.Logger)
}

// newSender picks the email provider named by EMAIL_PROVIDER.
func newSender(ctx context.Context, cfg *config.Config, log logger.Logger) (email.Sender, error) {
	switch cfg.EmailProvider {
	case config.ProviderSES:
		sender, err := email.NewSESSender(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("ses sender: %w", err)
		}
		return sender, nil
	case config.ProviderConsole:
		if cfg.IsProduction() {
			log.Warn("console email provider in production, quote requests will only be logged")
		}
		return email.NewConsoleSender(log), nil
	default:
		if cfg.SendGridAPIKey == "" {
			log.Warn("SENDGRID_API_KEY not set, quote submissions will fail to send")
		}
		return email.NewSendGridSender(cfg.SendGridAPIKey), nil
	}
}

// NewEcho builds the HTTP server with the full middleware chain and routes.
func (c *Container) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierrors.HTTPErrorHandler(c.Logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if c.Config.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
			Timeout: 2 * time.Second,
		}))
	}

	e.Use(c.Metrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommw.CORSConfig(c.Config.CORSAllowedOrigins)))
	e.Use(middleware.Secure())
	e.Use(custommw.SecurityHeaders(custommw.APIHeaders{}))
	e.Use(middleware.BodyLimit(BodyLimit))
	e.Use(c.GlobalLimiter.Middleware())

	c.RegisterRoutes(e)
	return e
}

// RegisterRoutes mounts every endpoint on e.
func (c *Container) RegisterRoutes(e *echo.Echo) {
	quoteLimit := custommw.QuoteRateLimit(c.QuoteLimiter, c.Metrics, c.Logger)

	e.GET("/health", c.HealthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	// Unversioned route used by the deployed contact form.
	e.POST("/api/quote", c.QuoteHandler.Submit,
		custommw.APIVersionMiddleware(custommw.LegacyQuoteVersion),
		quoteLimit,
	)

	v1 := e.Group("/api/v1")
	v1.Use(custommw.APIVersionMiddleware(custommw.CurrentAPIVersion))
	v1.GET("/version", c.OptionsHandler.Version)
	v1.POST("/quote", c.QuoteHandler.Submit, quoteLimit)
	v1.GET("/quote/options", c.OptionsHandler.QuoteOptions)
	v1.GET("/quote/limit", c.OptionsHandler.LimitStatus)
}

// Close releases infrastructure connections.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
