package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rcastillo/storefront-backend/api/responses"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitByIP applies a per-client fixed-window limit on the wrapped
// endpoint. Redis being down fails open so auth does not go dark with it.
func RateLimitByIP(logg *logger.Logger, limiter rateLimiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope+":"+clientIP(r), int64(limit), window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "scope", scope), "rate limiter unavailable, failing open")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
