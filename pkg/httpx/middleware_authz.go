package httpx

import (
	"net/http"

	"github.com/musterhq/muster/pkg/tokenx"
)

// RequireRole rejects authenticated requests whose identity does not carry
// the given role. It must run after AuthnMiddleware.
func RequireRole(role tokenx.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			if id.Role != role {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts a route to administrators.
func RequireAdmin() Middleware {
	return RequireRole(tokenx.RoleAdmin)
}
