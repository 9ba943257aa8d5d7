package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/http/respond"
)

// RequireSession rejects requests without a valid session token and stores
// the verified claims on the request context.
func RequireSession(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" {
			_ = respond.Error(w, http.StatusUnauthorized, "Login first")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			_ = respond.Error(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// OptionalSession stores claims when a valid token is present and otherwise
// serves the request anonymously. A token that fails verification is still rejected.
func OptionalSession(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if BearerToken(r) == "" {
			next.ServeHTTP(w, r)
			return
		}
		RequireSession(tokens, next).ServeHTTP(w, r)
	})
}

// BearerToken reads the token from the Authorization header, falling back to
// the token query parameter used by websocket clients.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
