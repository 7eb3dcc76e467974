// Package clientip extracts the originating client address from proxied
// HTTP requests, used for audit logging on authentication endpoints.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers in trust order. X-Forwarded-For may carry a chain; the
// first valid entry is the original client.
var headers = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the best-guess client IP, falling back to
// RemoteAddr when no proxy header carries a valid address. The result is
// normalized; an unparseable address yields an empty string.
func FromRequest(r *http.Request) string {
	for _, header := range headers {
		for value := range strings.SplitSeq(r.Header.Get(header), ",") {
			if ip := normalize(value); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

func normalize(value string) string {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil {
		return ""
	}
	return ip.String()
}
