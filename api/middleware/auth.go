package middleware

import (
	"net/http"
	"strings"

	"github.com/rcastillo/storefront-backend/api/responses"
	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/auth/session"
	"github.com/rcastillo/storefront-backend/pkg/config"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// Auth validates the bearer token and confirms the session has not been
// revoked. Valid claims are attached to the request context.
func Auth(logg *logger.Logger, jwtCfg config.JWTConfig, sessions session.AccessSessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), w, logg, err)
				return
			}

			claims, err := pkgauth.ParseAccessToken(jwtCfg, token)
			if err != nil {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token"))
				return
			}
			if !claims.Role.IsValid() {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if sessions != nil {
				active, err := sessions.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), w, logg,
						pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking session"))
					return
				}
				if !active {
					responses.WriteError(r.Context(), w, logg,
						pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked"))
					return
				}
			}

			ctx := withClaims(r.Context(), claims)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				sid := claims.SessionID
				if sid == "" {
					sid = claims.ID
				}
				ctx = logg.WithSessionID(ctx, sid)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed authorization header")
	}
	return strings.TrimSpace(token), nil
}
