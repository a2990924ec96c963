package middleware

import (
	"github.com/labstack/echo/v4"
)

// APIVersion represents the API version information
type APIVersion struct {
	Version           string `json:"version"`
	LatestVersion     string `json:"latest_version"`
	DeprecationDate   string `json:"deprecation_date,omitempty"`
	SunsetDate        string `json:"sunset_date,omitempty"`
	DeprecationNotice string `json:"deprecation_notice,omitempty"`
}

// CurrentAPIVersion holds the current API version info
var CurrentAPIVersion = APIVersion{
	Version:       "1.0.0",
	LatestVersion: "1.0.0",
}

// LegacyQuoteVersion describes the unversioned /api/quote route kept for
// existing forms.
var LegacyQuoteVersion = APIVersion{
	Version:           "0",
	LatestVersion:     CurrentAPIVersion.Version,
	DeprecationNotice: "Use POST /api/v1/quote",
}

// APIVersionMiddleware adds API version headers to all responses
func APIVersionMiddleware(version APIVersion) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version.Version)
			h.Set("X-API-Latest-Version", version.LatestVersion)

			if version.DeprecationNotice != "" {
				h.Set("X-API-Deprecation-Notice", version.DeprecationNotice)
			}
			if version.DeprecationDate != "" {
				h.Set("X-API-Deprecation-Date", version.DeprecationDate)
				h.Set("Deprecation", "true")

				if version.SunsetDate != "" {
					h.Set("X-API-Sunset-Date", version.SunsetDate)
					h.Set("Sunset", version.SunsetDate)
				}
			}

			return next(c)
		}
	}
}

// Deprecated reports whether the version has a deprecation date.
func (v APIVersion) Deprecated() bool {
	return v.DeprecationDate != ""
}
