package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rcastillo/storefront-backend/api/responses"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	redisclient "github.com/rcastillo/storefront-backend/pkg/redis"
)

const idempotencyHeader = "Idempotency-Key"

// Idempotency guards mutating endpoints against double submission. When the
// client sends an Idempotency-Key, a replay within the TTL is rejected. The
// claim is released again if the guarded handler fails, so clients can retry
// genuine errors with the same key. It must run after Auth so the claim is
// scoped per user.
func Idempotency(logg *logger.Logger, store redisclient.IdempotencyStore, scope string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := UserIDFrom(r.Context())
			if !ok {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			claimKey := store.IdempotencyKey(scope, userID.String()+":"+key)
			claimed, err := store.SetNX(r.Context(), claimKey, time.Now().UTC().Format(time.RFC3339), ttl)
			if err != nil {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking idempotency key"))
				return
			}
			if !claimed {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeIdempotency, "request already processed"))
				return
			}

			recorder := newStatusRecorder(w)
			next.ServeHTTP(recorder, r)

			if recorder.status >= http.StatusBadRequest {
				if delErr := store.Del(r.Context(), claimKey); delErr != nil && logg != nil {
					logg.Warn(logg.WithField(r.Context(), "scope", scope), "releasing idempotency key failed")
				}
			}
		})
	}
}
