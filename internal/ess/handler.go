package ess

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kola-hr/kola/internal/audit"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
)

// Handler serves the self-service pages.
type Handler struct {
	logger    *slog.Logger
	pages     *shell.Renderer
	audit     *audit.Service
	rbac      rbac.Middleware
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, pages *shell.Renderer, auditLog *audit.Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, pages: pages, audit: auditLog, rbac: rbac, validator: validator.New(), now: time.Now}
}

// MountRoutes registers /ess routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermSelfService))
		r.Get("/dashboard", h.dashboard)
		r.Get("/payslips", h.payslips)
		r.Get("/leave", h.leave)
		r.Post("/leave", h.requestLeave)
		r.Get("/profile", h.profile)
		r.Post("/profile", h.updateProfile)
	})
}

type leavePageData struct {
	LeavePage
	Form   LeaveForm
	Errors map[string]string
}

type profilePageData struct {
	Employee *hrapi.Employee
	Form     ProfileForm
	Errors   map[string]string
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := Dashboard(r.Context(), hrapi.ClientFromContext(r.Context()), h.now())
	if err != nil {
		h.pages.RenderError(w, r, "your dashboard", err)
		return
	}
	h.pages.Render(w, r, "pages/ess_dashboard.html", "My Dashboard", summary, http.StatusOK)
}

func (h *Handler) payslips(w http.ResponseWriter, r *http.Request) {
	payslips, err := Payslips(r.Context(), hrapi.ClientFromContext(r.Context()))
	if err != nil {
		h.pages.RenderError(w, r, "payslips", err)
		return
	}
	h.pages.Render(w, r, "pages/payslips.html", "My Payslips", payslips, http.StatusOK)
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	h.renderLeave(w, r, LeaveForm{}, nil, http.StatusOK)
}

func (h *Handler) renderLeave(w http.ResponseWriter, r *http.Request, form LeaveForm, errs map[string]string, status int) {
	page, err := Leave(r.Context(), hrapi.ClientFromContext(r.Context()))
	if err != nil {
		h.pages.RenderError(w, r, "leave requests", err)
		return
	}
	h.pages.Render(w, r, "pages/ess_leave.html", "My Leave", leavePageData{LeavePage: page, Form: form, Errors: errs}, status)
}

func (h *Handler) requestLeave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := LeaveFormFromValues(r.PostForm)
	if errs := form.Validate(h.validator); len(errs) > 0 {
		h.renderLeave(w, r, form, errs, http.StatusBadRequest)
		return
	}
	created, err := hrapi.ClientFromContext(r.Context()).CreateLeaveRequest(r.Context(), form.Input())
	if err != nil {
		if hrapi.StatusCode(err) == http.StatusUnauthorized {
			return
		}
		h.renderLeave(w, r, form, map[string]string{"general": shared.UserSafeMessage(err)}, http.StatusBadRequest)
		return
	}
	if err := h.audit.Record(r.Context(), audit.Entry{
		Action: audit.ActionLeaveRequest, Entity: "leave_request", EntityID: created.ID,
		Meta: map[string]any{"start": form.StartDate, "end": form.EndDate},
	}); err != nil {
		h.logger.WarnContext(r.Context(), "audit leave request", slog.Any("error", err))
	}
	h.pages.RedirectWithFlash(w, r, "/ess/leave", shared.FlashSuccess, "Leave request submitted")
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	employee, err := hrapi.ClientFromContext(r.Context()).MyProfile(r.Context())
	if err != nil {
		h.pages.RenderError(w, r, "your profile", err)
		return
	}
	h.pages.Render(w, r, "pages/profile.html", "My Profile", profilePageData{Employee: employee, Form: ProfileFormFrom(employee)}, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := ProfileFormFromValues(r.PostForm)
	if errs := form.Validate(h.validator); len(errs) > 0 {
		h.pages.Render(w, r, "pages/profile.html", "My Profile", profilePageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	updated, err := hrapi.ClientFromContext(r.Context()).UpdateMyProfile(r.Context(), form.Update())
	if err != nil {
		if hrapi.StatusCode(err) == http.StatusUnauthorized {
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err)}
		h.pages.Render(w, r, "pages/profile.html", "My Profile", profilePageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	// The sidebar shows the display name; pick up the change.
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		if err := sess.Refresh(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "refresh session after profile update", slog.Any("error", err))
		}
	}
	if err := h.audit.Record(r.Context(), audit.Entry{
		Action: audit.ActionProfileUpdate, Entity: "employee", EntityID: updated.ID,
	}); err != nil {
		h.logger.WarnContext(r.Context(), "audit profile update", slog.Any("error", err))
	}
	h.pages.RedirectWithFlash(w, r, "/ess/profile", shared.FlashSuccess, "Profile updated")
}
