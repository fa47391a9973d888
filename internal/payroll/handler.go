package payroll

import (
	"errors"
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

// Handler serves the payroll pages.
type Handler struct {
	logger    *slog.Logger
	pages     *shell.Renderer
	audit     *audit.Service
	rbac      rbac.Middleware
	validator *validator.Validate
	locks     *shared.Locker
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, pages *shell.Renderer, auditLog *audit.Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, pages: pages, audit: auditLog, rbac: rbac, validator: validator.New(), now: time.Now}
}

// WithLocker makes concurrent submissions for one period fail fast instead of
// reaching the backend twice.
func (h *Handler) WithLocker(l *shared.Locker) *Handler {
	h.locks = l
	return h
}

// MountRoutes registers /admin/payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPayrollView))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.With(h.rbac.RequireAny(rbac.PermPayrollRun)).Post("/", h.run)
}

type listPageData struct {
	Runs   []hrapi.PayrollRun
	Form   RunForm
	Errors map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, DefaultRunForm(h.now()), nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form RunForm, errs map[string]string, status int) {
	runs, err := History(r.Context(), hrapi.ClientFromContext(r.Context()))
	if err != nil {
		h.pages.RenderError(w, r, "payroll history", err)
		return
	}
	h.pages.Render(w, r, "pages/payroll.html", "Payroll", listPageData{Runs: runs, Form: form, Errors: errs}, status)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := RunFormFromValues(r.PostForm)
	if errs := form.Validate(h.validator); len(errs) > 0 {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}

	period := hrapi.PeriodLabel(form.PeriodYear, form.PeriodMonth)
	var companyID string
	if user := auth.UserFromContext(r.Context()); user != nil {
		companyID = user.CompanyID
	}
	release, err := h.locks.Acquire(r.Context(), shared.PayrollLockKey(companyID, form.PeriodYear, form.PeriodMonth))
	switch {
	case errors.Is(err, shared.ErrLocked):
		h.pages.RedirectWithFlash(w, r, "/admin/payroll", shared.FlashInfo, "Payroll for "+period+" is already being processed")
		return
	case err != nil:
		h.logger.WarnContext(r.Context(), "payroll lock unavailable", slog.Any("error", err))
		release = func() {}
	}
	defer release()

	run, err := hrapi.ClientFromContext(r.Context()).CreatePayrollRun(r.Context(), hrapi.PayrollRunInput{
		PeriodYear:  form.PeriodYear,
		PeriodMonth: form.PeriodMonth,
	})
	if err != nil {
		if hrapi.StatusCode(err) == http.StatusUnauthorized {
			return
		}
		h.pages.RedirectWithFlash(w, r, "/admin/payroll", shared.FlashError, "Payroll processing failed: "+shared.UserSafeMessage(err))
		return
	}
	if err := h.audit.Record(r.Context(), audit.Entry{
		Action: audit.ActionPayrollRun, Entity: "payroll_run", EntityID: run.ID,
		Meta: map[string]any{"period": period},
	}); err != nil {
		h.logger.WarnContext(r.Context(), "audit payroll run", slog.Any("error", err))
	}
	h.pages.RedirectWithFlash(w, r, "/admin/payroll", shared.FlashSuccess,
		"Payroll for "+period+" processed")
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	detail, err := Detail(r.Context(), hrapi.ClientFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.RenderError(w, r, "payroll run", err)
		return
	}
	h.pages.Render(w, r, "pages/payroll_detail.html", "Payroll "+detail.Run.Period(), detail, http.StatusOK)
}
