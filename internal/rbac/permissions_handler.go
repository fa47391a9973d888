package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/shell"
)

// PermissionsHandler serves the read-only settings page: company details
// and the role/permission grid.
type PermissionsHandler struct {
	pages *shell.Renderer
	rbac  Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(pages *shell.Renderer, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{pages: pages, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(PermSettingsView)).Get("/", h.showSettings)
}

type settingsPageData struct {
	User   *auth.User
	Roles  []auth.Role
	Matrix []MatrixRow
}

func (h *PermissionsHandler) showSettings(w http.ResponseWriter, r *http.Request) {
	data := settingsPageData{
		User:   auth.UserFromContext(r.Context()),
		Roles:  Roles,
		Matrix: Matrix(),
	}
	h.pages.Render(w, r, "pages/settings.html", "Settings", data, http.StatusOK)
}
