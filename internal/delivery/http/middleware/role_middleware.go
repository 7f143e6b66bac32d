package middleware

import (
	"net/http"

	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireContractor is a convenience middleware for contractor-only endpoints
func RequireContractor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleContractor)(next)
}

// RequireClient lets clients book. Contractors may also book other
// contractors' services, so they pass as well.
func RequireClient(next http.Handler) http.Handler {
	return RequireRole(entity.RoleClient, entity.RoleContractor)(next)
}
