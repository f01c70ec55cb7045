package middleware

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/enums"
)

func TestSessionIDSurvivesAccessIDRotation(t *testing.T) {
	userID := uuid.New()

	// Claims as minted at login, then as minted after a refresh: the jti
	// changes but the shopping session does not.
	loginClaims := &pkgauth.AccessTokenClaims{
		UserID:           userID,
		Role:             enums.UserRoleCustomer,
		SessionID:        "session-1",
		RegisteredClaims: jwt.RegisteredClaims{ID: "access-1"},
	}
	refreshedClaims := &pkgauth.AccessTokenClaims{
		UserID:           userID,
		Role:             enums.UserRoleCustomer,
		SessionID:        "session-1",
		RegisteredClaims: jwt.RegisteredClaims{ID: "access-2"},
	}

	before, ok := SessionIDFrom(withClaims(context.Background(), loginClaims))
	require.True(t, ok)
	after, ok := SessionIDFrom(withClaims(context.Background(), refreshedClaims))
	require.True(t, ok)
	assert.Equal(t, before, after, "the cart key must not change when the token is refreshed")

	accessID, ok := AccessIDFrom(withClaims(context.Background(), refreshedClaims))
	require.True(t, ok)
	assert.Equal(t, "access-2", accessID, "revocation keys off the rotated jti")
}

func TestSessionIDFallsBackToJTI(t *testing.T) {
	claims := &pkgauth.AccessTokenClaims{
		UserID:           uuid.New(),
		Role:             enums.UserRoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{ID: "access-1"},
	}

	sessionID, ok := SessionIDFrom(withClaims(context.Background(), claims))
	require.True(t, ok)
	assert.Equal(t, "access-1", sessionID)
}

func TestSessionIDFromWithoutClaims(t *testing.T) {
	_, ok := SessionIDFrom(context.Background())
	assert.False(t, ok)

	_, ok = AccessIDFrom(context.Background())
	assert.False(t, ok)
}
