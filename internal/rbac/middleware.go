package rbac

import (
	"log/slog"
	"net/http"

	"github.com/kola-hr/kola/internal/auth"
)

// Middleware wires role gates for HTTP handlers. Unauthenticated requests go
// to the login page and users without a role to the pending page.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.gate(func(role auth.Role) bool {
		return hasAnyPermission(grants[role], normalized)
	})
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.gate(func(role auth.Role) bool {
		return hasAllPermissions(grants[role], normalized)
	})
}

// RequireRole admits only the listed roles.
func (m Middleware) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return m.gate(func(role auth.Role) bool {
		for _, allowed := range roles {
			if role == allowed {
				return true
			}
		}
		return false
	})
}

func (m Middleware) gate(allow func(auth.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			switch {
			case user == nil:
				http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
			case !user.Role.Known():
				http.Redirect(w, r, auth.RoleUnknown.Home(), http.StatusSeeOther)
			case allow(user.Role):
				next.ServeHTTP(w, r)
			default:
				if m.Logger != nil {
					m.Logger.WarnContext(r.Context(), "rbac denied", slog.String("path", r.URL.Path), slog.String("role", string(user.Role)))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			}
		})
	}
}
