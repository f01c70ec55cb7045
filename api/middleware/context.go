package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/enums"
)

type contextKey string

const (
	claimsContextKey    contextKey = "auth_claims"
	requestIDContextKey contextKey = "request_id"
)

func withClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFrom returns the authenticated token claims, if any.
func ClaimsFrom(ctx context.Context) (*pkgauth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*pkgauth.AccessTokenClaims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the authenticated user's ID.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// RoleFrom returns the authenticated user's role.
func RoleFrom(ctx context.Context) (enums.UserRole, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}
	return claims.Role, true
}

// SessionIDFrom returns the shopping session identifier. The cart is keyed
// by this value; it survives token rotation, so a login session and its cart
// share a lifetime. Tokens minted before the sid claim existed fall back to
// the jti.
func SessionIDFrom(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}
	if claims.SessionID != "" {
		return claims.SessionID, true
	}
	if claims.ID != "" {
		return claims.ID, true
	}
	return "", false
}

// AccessIDFrom returns the JWT jti, which keys the Redis refresh session.
// Revocation must use this value, not the shopping session ID.
func AccessIDFrom(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFrom returns the request correlation ID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDContextKey).(string)
	return requestID, ok && requestID != ""
}
