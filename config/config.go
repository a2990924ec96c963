package config

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Email providers.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderConsole  = "console"
)

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIHost         string        `env:"API_HOST" envDefault:"0.0.0.0"`
	APIPort         string        `env:"API_PORT" envDefault:"8080"`
	APIEnvironment  string        `env:"API_ENVIRONMENT" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`

	// Email
	EmailProvider  string   `env:"EMAIL_PROVIDER" envDefault:"sendgrid"`
	SendGridAPIKey string   `env:"SENDGRID_API_KEY"`
	AWSRegion      string   `env:"AWS_REGION" envDefault:"us-east-1"`
	QuoteFromEmail string   `env:"QUOTE_FROM_EMAIL" envDefault:"noreply@anthonyhasrouny.com"`
	QuoteFromName  string   `env:"QUOTE_FROM_NAME" envDefault:"Portfolio Contact"`
	QuoteToEmails  []string `env:"QUOTE_TO_EMAILS" envSeparator:"," envDefault:"anthonyhasrouny8@gmail.com"`

	// Rendering
	SiteURL            string `env:"SITE_URL" envDefault:"https://anthonyhasrouny.com"`
	PhoneDefaultRegion string `env:"PHONE_DEFAULT_REGION" envDefault:"US"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Quote rate limiting
	QuoteRateLimitMax      int           `env:"QUOTE_RATE_LIMIT_MAX" envDefault:"5"`
	QuoteRateLimitWindow   time.Duration `env:"QUOTE_RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitBackend       string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RedisURL               string        `env:"REDIS_URL"`
	RateLimitSweepSchedule string        `env:"RATE_LIMIT_SWEEP_SCHEDULE" envDefault:"@every 1m"`

	// Global rate limiting
	RateLimitRequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"120"`
	RateLimitBurst             int `env:"RATE_LIMIT_BURST" envDefault:"30"`

	// Sentry
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	envLocations := []string{".env"}
	if name := os.Getenv("API_ENVIRONMENT"); name != "" {
		envLocations = append([]string{".env." + name}, envLocations...)
	}
	for _, loc := range envLocations {
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	return Parse()
}

// Parse builds the config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend))
	cfg.QuoteToEmails = compact(cfg.QuoteToEmails)
	cfg.CORSAllowedOrigins = compact(cfg.CORSAllowedOrigins)
	if cfg.SentryEnvironment == "" {
		cfg.SentryEnvironment = cfg.APIEnvironment
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with. A missing provider
// key is allowed: quote submissions then fail with 500 until it is set.
func (c *Config) Validate() error {
	if c.QuoteRateLimitMax < 1 {
		return fmt.Errorf("QUOTE_RATE_LIMIT_MAX must be at least 1, got %d", c.QuoteRateLimitMax)
	}
	if c.QuoteRateLimitWindow <= 0 {
		return fmt.Errorf("QUOTE_RATE_LIMIT_WINDOW must be positive, got %s", c.QuoteRateLimitWindow)
	}

	switch c.EmailProvider {
	case ProviderSendGrid, ProviderSES, ProviderConsole:
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of sendgrid, ses, console, got %q", c.EmailProvider)
	}

	switch c.RateLimitBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimitBackend)
	}

	if _, err := mail.ParseAddress(c.QuoteFromEmail); err != nil {
		return fmt.Errorf("QUOTE_FROM_EMAIL is not a valid address: %w", err)
	}
	for _, to := range c.QuoteToEmails {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("QUOTE_TO_EMAILS contains an invalid address %q: %w", to, err)
		}
	}

	if c.RateLimitRequestsPerMinute < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_MINUTE and RATE_LIMIT_BURST must be at least 1")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// IsProduction reports whether the API runs in production.
func (c *Config) IsProduction() bool {
	return c.APIEnvironment == "production"
}

// Address returns host:port for the HTTP server.
func (c *Config) Address() string {
	return c.APIHost + ":" + c.APIPort
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
