package middleware

import (
	"net/http"

	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// RequireStaff admits staff and admin roles only. It must run after Auth.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoleCheck(logg, func(role enums.UserRole) bool {
		return role.IsStaff()
	})
}

// RequireAdmin admits the admin role only. It must run after Auth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoleCheck(logg, func(role enums.UserRole) bool {
		return role == enums.UserRoleAdmin
	})
}

func requireRoleCheck(logg *logger.Logger, allowed func(enums.UserRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFrom(r.Context())
			if !ok {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !role.IsValid() || !allowed(role) {
				responses.WriteError(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
