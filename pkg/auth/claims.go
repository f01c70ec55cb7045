package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rcastillo/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI overrides the generated token id; used to bind the token to a
	// Redis-backed session.
	JTI string
	// SessionID identifies the shopping session. Unlike the jti it is
	// carried forward on refresh, so the cart survives token rotation.
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	Role      enums.UserRole `json:"role"`
	SessionID string         `json:"sid,omitempty"`
	jwt.RegisteredClaims
}
