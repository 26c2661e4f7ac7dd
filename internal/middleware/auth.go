package middleware

import (
	"net/http"
	"strings"

	"github.com/ayush/social-feed/backend/internal/auth"
	"github.com/ayush/social-feed/backend/internal/httpx"
)

// VerifyToken is middleware that validates the bearer token in the
// Authorization header and injects its claims into the request context.
func VerifyToken(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.WriteError(w, httpx.Unauthorized, "")
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				httpx.WriteError(w, httpx.InvalidToken, "")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				httpx.WriteError(w, httpx.InvalidToken, "")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
