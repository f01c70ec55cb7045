package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/enums"
)

type stubIdempotencyStore struct {
	claims map[string]string
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{claims: map[string]string{}}
}

func (s *stubIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return s.claims[key], nil
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := s.claims[key]; exists {
		return false, nil
	}
	s.claims[key] = "claimed"
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.claims, key)
	}
	return nil
}

func authedRequest(t *testing.T, key string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	claims := &pkgauth.AccessTokenClaims{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	claims.ID = uuid.NewString()
	return req.WithContext(withClaims(req.Context(), claims))
}

func TestIdempotencyFirstRequestPasses(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	handler := Idempotency(quietLogger(), store, "checkout", time.Hour)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusCreated)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, "key-1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyReplayIsRejected(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	handler := Idempotency(quietLogger(), store, "checkout", time.Hour)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusCreated)
		}),
	)

	req := authedRequest(t, "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", errorCode(t, rec.Body))
	assert.Equal(t, 1, calls, "the guarded handler must run only once")
}

func TestIdempotencyKeyReleasedOnFailure(t *testing.T) {
	store := newStubIdempotencyStore()
	failFirst := true
	handler := Idempotency(quietLogger(), store, "checkout", time.Hour)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if failFirst {
				failFirst = false
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}),
	)

	req := authedRequest(t, "key-1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// A retry with the same key must be allowed after the failure.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIdempotencyWithoutKeyIsPassThrough(t *testing.T) {
	store := newStubIdempotencyStore()
	handler := Idempotency(quietLogger(), store, "checkout", time.Hour)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
	)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, ""))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Empty(t, store.claims)
}
