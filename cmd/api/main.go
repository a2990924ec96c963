package main

// @title Portfolio Quote API
// @version 1.0
// @description Accepts project inquiries from the portfolio contact form and forwards them by email.

// @contact.name Anthony Hasrouny
// @contact.url https://anthonyhasrouny.com

// @host localhost:8080
// @BasePath /

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthonyhasrouny/portfolio/config"
	"github.com/anthonyhasrouny/portfolio/pkg/container"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/getsentry/sentry-go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	log.Info("configuration loaded", "environment", cfg.APIEnvironment)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.1,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			log.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Info("sentry disabled (no DSN configured)")
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer c.Close()

	e := c.NewEcho()

	c.Cron.Start()

	address := cfg.Address()
	log.Info("quote API starting",
		"address", address,
		"email_provider", c.EmailService.Provider(),
		"rate_limit_backend", cfg.RateLimitBackend,
		"quote_limit", cfg.QuoteRateLimitMax,
		"quote_window", cfg.QuoteRateLimitWindow.String(),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		c.Cron.Stop()
		return fmt.Errorf("start server: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String())
	}

	c.Cron.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	log.Info("server gracefully stopped")
	if zl, ok := log.(interface{ Sync() error }); ok {
		_ = zl.Sync()
	}
	return nil
}
