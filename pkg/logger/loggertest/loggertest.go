// Package loggertest provides loggers for tests.
package loggertest

import (
	"testing"

	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"go.uber.org/zap/zaptest"
)

// New returns a logger that writes through t.Log.
func New(t testing.TB) logger.Logger {
	return logger.FromZap(zaptest.NewLogger(t))
}
