package middleware

import (
	"net/http"

	"github.com/hongminglow/bunny-bank/internal/http/respond"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewLimiter returns a token bucket refilled at perSecond; zero or less disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// RateLimit rejects requests with 429 once limiter runs dry. A nil limiter lets everything through.
func RateLimit(limiter *rate.Limiter, logger *zap.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded",
				zap.String("path", r.URL.Path),
				zap.String("trace_id", TraceIDFrom(r.Context())),
			)
			_ = respond.Error(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
