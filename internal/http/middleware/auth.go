package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/launchdeck/launchdeck/internal/httputil"
	"github.com/launchdeck/launchdeck/internal/identity"
	"github.com/launchdeck/launchdeck/pkg/domain"
)

type contextKey string

const (
	// SessionKey is the context key for the resolved session snapshot.
	SessionKey contextKey = "session"
)

// Session creates middleware that resolves the caller's session snapshot.
// Checks Authorization header first, then falls back to cookie for web clients.
// An anonymous or invalid-token request still passes through with no session
// in context; the routing endpoint answers NeedsLogin for those, so rejecting
// here would be wrong.
func Session(verifier *identity.Verifier, builder *identity.Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			// Try Authorization header first (mobile clients and API calls)
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			// Fall back to cookie (web clients)
			if tokenString == "" {
				if token, ok := httputil.GetAccessTokenFromCookie(r); ok {
					tokenString = token
				}
			}

			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Parse(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := builder.Build(r.Context(), claims)
			if err != nil {
				httputil.Error(w, http.StatusInternalServerError, "failed to resolve session")
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession creates middleware that rejects requests without a session.
// Must be used after Session middleware.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSession(r.Context()); !ok {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession extracts the session snapshot from the request context.
func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}
