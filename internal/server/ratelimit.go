package server

import (
	"net/http"

	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/handlers"
	"golang.org/x/time/rate"
)

// rateLimitMessage matches the client-facing wording the API has always used
const rateLimitMessage = "Too many requests, please try again after a minute."

// rateLimiter applies a single global token bucket across all API requests.
// Nil limiter means limiting is disabled.
type rateLimiter struct {
	limiter *rate.Limiter
}

func newRateLimiter(config *common.RateLimitConfig) *rateLimiter {
	if config.RequestsPerMinute <= 0 {
		return &rateLimiter{}
	}

	burst := config.Burst
	if burst <= 0 {
		burst = config.RequestsPerMinute
	}

	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), burst),
	}
}

func (rl *rateLimiter) allow() bool {
	if rl.limiter == nil {
		return true
	}
	return rl.limiter.Allow()
}

// rateLimitMiddleware rejects requests over the configured rate with a 429
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow() {
			s.app.Logger.Warn().
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("Request rate limited")
			handlers.WriteError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}
