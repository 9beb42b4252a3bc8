package middleware

import (
	"fmt"
	"net/http"

	"github.com/launchdeck/launchdeck/internal/config"
)

// SecurityHeaders creates middleware that applies browser security headers
// to every response. This is a JSON API: the headers mostly exist to keep
// responses inert if a browser ever renders one directly, and the set is
// computed once at construction rather than per request.
//
// Cache-Control is always no-store when the middleware is enabled, since
// responses carry invite tokens and authorization decisions that must not
// land in shared caches.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := buildHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				h.Set(name, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func buildHeaders(cfg config.SecurityHeadersConfig) map[string]string {
	headers := map[string]string{
		"Cache-Control": "no-store",
	}
	if cfg.CSP != "" {
		headers["Content-Security-Policy"] = cfg.CSP
	}
	if cfg.HSTSMaxAge > 0 {
		headers["Strict-Transport-Security"] = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}
	if cfg.FrameOptions != "" {
		headers["X-Frame-Options"] = cfg.FrameOptions
	}
	if cfg.ContentTypeOptions != "" {
		headers["X-Content-Type-Options"] = cfg.ContentTypeOptions
	}
	if cfg.XSSProtection != "" {
		headers["X-XSS-Protection"] = cfg.XSSProtection
	}
	if cfg.ReferrerPolicy != "" {
		headers["Referrer-Policy"] = cfg.ReferrerPolicy
	}
	if cfg.PermissionsPolicy != "" {
		headers["Permissions-Policy"] = cfg.PermissionsPolicy
	}
	return headers
}
