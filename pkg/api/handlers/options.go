package handlers

import (
	"net/http"

	apierrors "github.com/anthonyhasrouny/portfolio/pkg/api/errors"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/middleware"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/anthonyhasrouny/portfolio/pkg/ratelimit"
	"github.com/labstack/echo/v4"
)

// LimitStatus is the caller's position in the current quote window.
type LimitStatus struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset_at"` // unix seconds
}

// OptionsHandler serves the data a quote form needs before submitting.
type OptionsHandler struct {
	limiter *ratelimit.Limiter
	logger  logger.Logger
}

// NewOptionsHandler creates a new options handler.
func NewOptionsHandler(limiter *ratelimit.Limiter, log logger.Logger) *OptionsHandler {
	return &OptionsHandler{limiter: limiter, logger: log}
}

// QuoteOptions godoc
// @Summary List quote form choices
// @Description Label sets accepted for projectType, timeline, budgetRange, mainGoals, requiredFeatures and contentStatus
// @Tags Quote
// @Produce json
// @Success 200 {object} models.QuoteOptions
// @Router /api/v1/quote/options [get]
func (h *OptionsHandler) QuoteOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, models.DefaultQuoteOptions())
}

// LimitStatus godoc
// @Summary Show the caller's quote rate limit
// @Tags Quote
// @Produce json
// @Success 200 {object} LimitStatus
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quote/limit [get]
func (h *OptionsHandler) LimitStatus(c echo.Context) error {
	key := ratelimit.ClientKey(c.Request())
	d, err := h.limiter.Status(c.Request().Context(), key)
	if err != nil {
		h.logger.Error("rate limit status unavailable", "client", key, "error", err)
		return apierrors.InternalError(c)
	}
	return c.JSON(http.StatusOK, LimitStatus{
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt.Unix(),
	})
}

// Version godoc
// @Summary API version
// @Tags System
// @Produce json
// @Success 200 {object} middleware.APIVersion
// @Router /api/v1/version [get]
func (h *OptionsHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentAPIVersion)
}
