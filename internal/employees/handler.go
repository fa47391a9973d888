package employees

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kola-hr/kola/internal/audit"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
)

// Handler serves the employee pages.
type Handler struct {
	logger    *slog.Logger
	pages     *shell.Renderer
	audit     *audit.Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, pages *shell.Renderer, auditLog *audit.Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, pages: pages, audit: auditLog, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers /admin/employees routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermEmployeesView))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermEmployeesCreate))
		r.Get("/new", h.newForm)
		r.Post("/", h.create)
	})
}

// MountTeam registers the manager's team page.
func (h *Handler) MountTeam(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermTeamView)).Get("/", h.team)
}

type formPageData struct {
	Form   Form
	Errors map[string]string
}

type listPageData struct {
	ListResult
	CanCreate bool
}

type teamPageData struct {
	Employees []hrapi.Employee
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := List(r.Context(), hrapi.ClientFromContext(r.Context()), q.Get("q"), shared.PageFromQuery(q))
	if err != nil {
		h.pages.RenderError(w, r, "employees", err)
		return
	}
	data := listPageData{ListResult: result}
	if user := auth.UserFromContext(r.Context()); user != nil {
		data.CanCreate = rbac.Can(user.Role, rbac.PermEmployeesCreate)
	}
	h.pages.Render(w, r, "pages/employees.html", "Employees", data, http.StatusOK)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	employee, err := hrapi.ClientFromContext(r.Context()).Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.RenderError(w, r, "employee", err)
		return
	}
	h.pages.Render(w, r, "pages/employee_detail.html", employee.FullName(), employee, http.StatusOK)
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "pages/employee_form.html", "Add employee", formPageData{}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := FormFromValues(r.PostForm)
	if errs := form.Validate(h.validator); len(errs) > 0 {
		h.pages.Render(w, r, "pages/employee_form.html", "Add employee", formPageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}

	created, err := hrapi.ClientFromContext(r.Context()).CreateEmployee(r.Context(), form.Input())
	if err != nil {
		if hrapi.StatusCode(err) == http.StatusUnauthorized {
			return
		}
		errs := map[string]string{"general": shared.UserSafeMessage(err)}
		h.pages.Render(w, r, "pages/employee_form.html", "Add employee", formPageData{Form: form, Errors: errs}, http.StatusBadRequest)
		return
	}
	if err := h.audit.Record(r.Context(), audit.Entry{
		Action: audit.ActionEmployeeCreate, Entity: "employee", EntityID: created.ID,
		Meta: map[string]any{"name": created.FullName(), "email": created.Email},
	}); err != nil {
		h.logger.WarnContext(r.Context(), "audit employee create", slog.Any("error", err))
	}
	h.pages.RedirectWithFlash(w, r, "/admin/employees", shared.FlashSuccess, "Employee "+created.FullName()+" added")
}

func (h *Handler) team(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	team, err := Team(r.Context(), hrapi.ClientFromContext(r.Context()), user.ID)
	if err != nil {
		h.pages.RenderError(w, r, "your team", err)
		return
	}
	h.pages.Render(w, r, "pages/team.html", "My Team", teamPageData{Employees: team}, http.StatusOK)
}
