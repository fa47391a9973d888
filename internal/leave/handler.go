package leave

import (
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/kola-hr/kola/internal/audit"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
)

// Handler serves the leave approval pages.
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

// MountRoutes registers the queue and decision routes. The same routes are
// mounted under /admin/leave and /manager/leave-approvals.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermLeaveDecide))
		r.Get("/", h.list)
		r.Post("/{id}/approve", h.decide(hrapi.LeaveApproved))
		r.Post("/{id}/deny", h.decide(hrapi.LeaveDenied))
	})
}

type pageData struct {
	Queue
	Filters []string
	Base    string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	queue, err := Load(r.Context(), hrapi.ClientFromContext(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		h.pages.RenderError(w, r, "leave requests", err)
		return
	}
	data := pageData{Queue: queue, Filters: Filters, Base: path.Clean(r.URL.Path)}
	h.pages.Render(w, r, "pages/leave.html", "Leave Management", data, http.StatusOK)
}

func (h *Handler) decide(status string) http.HandlerFunc {
	action, verb := audit.ActionLeaveApprove, "approved"
	if status == hrapi.LeaveDenied {
		action, verb = audit.ActionLeaveDeny, "denied"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// .../{id}/approve -> the queue the form was posted from.
		back := path.Dir(path.Dir(r.URL.Path))
		id := chi.URLParam(r, "id")

		decided, err := Decide(r.Context(), hrapi.ClientFromContext(r.Context()), id, status)
		if err != nil {
			if hrapi.StatusCode(err) == http.StatusUnauthorized {
				return
			}
			h.pages.RedirectWithFlash(w, r, back, shared.FlashError, "Could not update leave request: "+shared.UserSafeMessage(err))
			return
		}
		if err := h.audit.Record(r.Context(), audit.Entry{
			Action: action, Entity: "leave_request", EntityID: id,
			Meta: map[string]any{"employee": decided.EmployeeName()},
		}); err != nil {
			h.logger.WarnContext(r.Context(), "audit leave decision", slog.Any("error", err))
		}
		h.pages.RedirectWithFlash(w, r, back, shared.FlashSuccess, "Leave request "+verb)
	}
}
