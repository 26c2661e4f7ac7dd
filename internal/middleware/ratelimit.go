package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/ratelimit"
)

// RateLimit rejects callers that exceed limit requests per window. Callers
// are keyed by scope and the host part of RemoteAddr, which forwarding
// headers only change when RealIP is mounted in front.
func RateLimit(l ratelimit.Limiter, scope string, limit int, window time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.Allow(r.Context(), scope+":"+clientHost(r), limit, window)
			if !ok {
				log.Warn("rate limited", zap.String("scope", scope), zap.String("remote", r.RemoteAddr))
				secs := int(retry.Round(time.Second).Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httpx.WriteError(w, httpx.RateLimited, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
