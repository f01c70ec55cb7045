package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	"github.com/rcastillo/storefront-backend/pkg/types"
)

type stubSessionChecker struct {
	active map[string]bool
	err    error
}

func (s *stubSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[accessID], nil
}

func testJWT() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mintToken(t *testing.T, role enums.UserRole, jti string) string {
	t.Helper()
	signed, err := pkgauth.MintAccessToken(testJWT(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    jti,
	})
	require.NoError(t, err)
	return signed
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Session", claims.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope.Error.Code
}

func TestAuthAcceptsValidToken(t *testing.T) {
	jti := uuid.NewString()
	sessions := &stubSessionChecker{active: map[string]bool{jti: true}}
	handler := Auth(quietLogger(), testJWT(), sessions)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer, jti))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jti, rec.Header().Get("X-Session"))
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(quietLogger(), testJWT(), &stubSessionChecker{})(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec.Body))
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(quietLogger(), testJWT(), &stubSessionChecker{})(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	jti := uuid.NewString()
	sessions := &stubSessionChecker{active: map[string]bool{}}
	handler := Auth(quietLogger(), testJWT(), sessions)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer, jti))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStaff(t *testing.T) {
	cases := []struct {
		role   enums.UserRole
		status int
	}{
		{enums.UserRoleCustomer, http.StatusForbidden},
		{enums.UserRoleStaff, http.StatusOK},
		{enums.UserRoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			jti := uuid.NewString()
			sessions := &stubSessionChecker{active: map[string]bool{jti: true}}
			handler := Auth(quietLogger(), testJWT(), sessions)(
				RequireStaff(quietLogger())(protectedEcho(t)),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+mintToken(t, tc.role, jti))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireStaffWithoutAuth(t *testing.T) {
	handler := RequireStaff(quietLogger())(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
