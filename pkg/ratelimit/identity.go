package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests without a forwarded address.
const UnknownClient = "unknown"

// ClientKey identifies the caller by the first X-Forwarded-For hop.
// Requests without the header all share UnknownClient, so one busy
// anonymous caller can exhaust the window for every other one.
func ClientKey(r *http.Request) string {
	return KeyFromForwardedFor(r.Header.Get("X-Forwarded-For"))
}

// KeyFromForwardedFor extracts the first hop of an X-Forwarded-For value.
func KeyFromForwardedFor(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownClient
	}
	return first
}
