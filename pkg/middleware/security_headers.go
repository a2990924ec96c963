package middleware

import (
	"cmp"

	"github.com/labstack/echo/v4"
)

// APIHeaders are the browser-facing headers sent with every JSON response.
// Empty fields take the value from DefaultAPIHeaders.
type APIHeaders struct {
	ContentSecurityPolicy string
	ReferrerPolicy        string
	CacheControl          string
}

// DefaultAPIHeaders forbids rendering, framing and caching of API responses.
// Quote responses carry per-caller rate limit state, so nothing is stored.
func DefaultAPIHeaders() APIHeaders {
	return APIHeaders{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		ReferrerPolicy:        "no-referrer",
		CacheControl:          "no-store",
	}
}

// SecurityHeaders sets the APIHeaders before the handler runs, so error
// responses carry them too.
func SecurityHeaders(h APIHeaders) echo.MiddlewareFunc {
	d := DefaultAPIHeaders()
	headers := [][2]string{
		{"Content-Security-Policy", cmp.Or(h.ContentSecurityPolicy, d.ContentSecurityPolicy)},
		{"Referrer-Policy", cmp.Or(h.ReferrerPolicy, d.ReferrerPolicy)},
		{echo.HeaderCacheControl, cmp.Or(h.CacheControl, d.CacheControl)},
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, kv := range headers {
				c.Response().Header().Set(kv[0], kv[1])
			}
			return next(c)
		}
	}
}
