package overview

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kola-hr/kola/internal/audit"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shell"
)

const recentActivity = 5

// Handler serves the dashboards.
type Handler struct {
	logger *slog.Logger
	pages  *shell.Renderer
	audit  *audit.Service
	rbac   rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, pages *shell.Renderer, auditLog *audit.Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, pages: pages, audit: auditLog, rbac: rbac}
}

// MountAdmin registers GET /admin/dashboard.
func (h *Handler) MountAdmin(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermDashboardView)).Get("/", h.admin)
}

// MountManager registers GET /manager/dashboard.
func (h *Handler) MountManager(r chi.Router) {
	r.With(h.rbac.RequireRole(auth.RoleManager)).Get("/", h.manager)
}

type adminPageData struct {
	Stats    AdminStats
	Activity []audit.Entry
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	stats, err := Admin(r.Context(), hrapi.ClientFromContext(r.Context()))
	if err != nil {
		h.pages.RenderError(w, r, "dashboard", err)
		return
	}
	data := adminPageData{Stats: stats}
	if h.audit.Enabled() {
		filters := audit.TimelineFilters{Page: 1, PageSize: recentActivity}
		if user := auth.UserFromContext(r.Context()); user != nil {
			filters.CompanyID = user.CompanyID
		}
		result, err := h.audit.Timeline(r.Context(), filters)
		if err != nil {
			h.logger.WarnContext(r.Context(), "load recent activity", slog.Any("error", err))
		} else {
			data.Activity = result.Rows
		}
	}
	h.pages.Render(w, r, "pages/admin_dashboard.html", "Dashboard", data, http.StatusOK)
}

func (h *Handler) manager(w http.ResponseWriter, r *http.Request) {
	var managerID string
	if user := auth.UserFromContext(r.Context()); user != nil {
		managerID = user.ID
	}
	stats, err := Manager(r.Context(), hrapi.ClientFromContext(r.Context()), managerID)
	if err != nil {
		h.pages.RenderError(w, r, "dashboard", err)
		return
	}
	h.pages.Render(w, r, "pages/manager_dashboard.html", "Dashboard", stats, http.StatusOK)
}
