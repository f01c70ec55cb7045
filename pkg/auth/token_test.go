package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/enums"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	userID := uuid.New()
	jti := uuid.NewString()

	signed, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleStaff,
		JTI:    jti,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testConfig(), signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleStaff, claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "storefront-test", claims.Issuer)
}

func TestMintSessionIDDefaultsToJTI(t *testing.T) {
	signed, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
		JTI:    "access-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testConfig(), signed)
	require.NoError(t, err)
	assert.Equal(t, "access-1", claims.SessionID, "a fresh login binds the shopping session to the jti")
}

func TestMintPreservesExplicitSessionID(t *testing.T) {
	signed, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{
		UserID:    uuid.New(),
		Role:      enums.UserRoleCustomer,
		JTI:       "access-2",
		SessionID: "session-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testConfig(), signed)
	require.NoError(t, err)
	assert.Equal(t, "access-2", claims.ID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRole("root"),
	})
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	signed, err := MintAccessToken(testConfig(), time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testConfig(), signed)
	assert.Error(t, err)

	claims, err := ParseAccessTokenAllowExpired(testConfig(), signed)
	require.NoError(t, err, "the refresh flow reads expired tokens")
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	other := testConfig()
	other.Issuer = "someone-else"

	signed, err := MintAccessToken(other, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testConfig(), signed)
	assert.Error(t, err)
}

func TestParseRejectsTamperedSecret(t *testing.T) {
	signed, err := MintAccessToken(testConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	wrong := testConfig()
	wrong.Secret = "different"
	_, err = ParseAccessToken(wrong, signed)
	assert.Error(t, err)
}
