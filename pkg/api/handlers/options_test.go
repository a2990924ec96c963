package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/anthonyhasrouny/portfolio/pkg/ratelimit"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGetContext(path, forwardedFor string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newLimiter(t *testing.T, store ratelimit.Store) *ratelimit.Limiter {
	t.Helper()
	l, err := ratelimit.New(store, 5, time.Minute)
	require.NoError(t, err)
	return l
}

func TestOptionsHandler_QuoteOptions(t *testing.T) {
	h := NewOptionsHandler(newLimiter(t, ratelimit.NewMemoryStore()), logger.NewNop())
	c, rec := newGetContext("/api/v1/quote/options", "")

	require.NoError(t, h.QuoteOptions(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var opts models.QuoteOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, models.ProjectTypes, opts.ProjectTypes)
	assert.Contains(t, opts.ContentStatuses, "Partially - I'll provide some content")
	assert.Len(t, opts.RequiredFeatures, 13)
}

func TestOptionsHandler_LimitStatus(t *testing.T) {
	limiter := newLimiter(t, ratelimit.NewMemoryStore())
	h := NewOptionsHandler(limiter, logger.NewNop())

	_, err := limiter.Allow(context.Background(), "203.0.113.5")
	require.NoError(t, err)

	c, rec := newGetContext("/api/v1/quote/limit", "203.0.113.5")
	require.NoError(t, h.LimitStatus(c))

	var status LimitStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 5, status.Limit)
	assert.Equal(t, 4, status.Remaining)
	assert.Greater(t, status.ResetAt, time.Now().Unix())
}

type downStore struct{}

func (downStore) Get(context.Context, string) (ratelimit.Record, bool, error) {
	return ratelimit.Record{}, false, errors.New("redis down")
}

func (downStore) IncrementOrReset(context.Context, string, time.Time, time.Duration) (ratelimit.Record, error) {
	return ratelimit.Record{}, errors.New("redis down")
}

func TestOptionsHandler_LimitStatusStoreDown(t *testing.T) {
	h := NewOptionsHandler(newLimiter(t, downStore{}), logger.NewNop())
	c, rec := newGetContext("/api/v1/quote/limit", "203.0.113.5")

	require.NoError(t, h.LimitStatus(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")
}

func TestOptionsHandler_Version(t *testing.T) {
	h := NewOptionsHandler(newLimiter(t, ratelimit.NewMemoryStore()), logger.NewNop())
	c, rec := newGetContext("/api/v1/version", "")

	require.NoError(t, h.Version(c))
	assert.JSONEq(t, `{"version":"1.0.0","latest_version":"1.0.0"}`, rec.Body.String())
}
