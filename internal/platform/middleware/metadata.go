package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"mentorlab/pkg/requestcontext"
)

// ClientMetadata extracts the client IP address and a normalized User-Agent
// from the request and adds them to the context for the audit recorder.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		agent := NormalizeAgent(r.Header.Get("User-Agent"))

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, agent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NormalizeAgent reduces a raw User-Agent header to "Browser version (OS)".
// Raw UA strings are long and high-cardinality; the audit log only needs a
// diagnostic summary. Unparseable or empty agents become "unknown".
func NormalizeAgent(raw string) string {
	if raw == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	os := ua.OS()
	if os == "" {
		return fmt.Sprintf("%s %s", name, version)
	}
	return fmt.Sprintf("%s %s (%s)", name, version, os)
}

// ClientIPFromRequest extracts the real client IP from the request, handling
// proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// X-Real-IP is set by nginx and similar proxies.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}
	return "unknown"
}
