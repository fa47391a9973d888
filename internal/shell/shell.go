// Package shell renders dashboard pages inside the signed-in chrome: the
// role's sidebar, the user badge, flash toasts and the generic error panel.
package shell

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/view"
)

// Renderer renders dashboard pages.
type Renderer struct {
	templates *view.Engine
	csrf      *shared.CSRFManager
	logger    *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(templates *view.Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{templates: templates, csrf: csrf, logger: logger}
}

// Render writes template with the signed-in chrome.
func (p *Renderer) Render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := p.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Viewer:      ViewerFor(auth.UserFromContext(r.Context())),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.templates.Render(w, template, viewData); err != nil {
		p.logger.ErrorContext(r.Context(), "render template", slog.String("template", template), slog.Any("error", err))
	}
}

// RenderError shows the error panel for a failed fetch. The retry link
// repeats the current request. A 401 has already redirected the browser.
func (p *Renderer) RenderError(w http.ResponseWriter, r *http.Request, title string, err error) {
	if errors.Is(err, hrapi.ErrUnauthorized) {
		return
	}
	p.logger.WarnContext(r.Context(), "page fetch failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	panel := view.ErrorPanel{
		Title:    "Couldn't load " + title,
		Message:  shared.UserSafeMessage(err),
		RetryURL: r.URL.RequestURI(),
	}
	p.Render(w, r, "pages/error.html", title, panel, errorStatus(err))
}

// RedirectWithFlash queues a toast and redirects with 303.
func (p *Renderer) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.Flash(r.Context(), kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func errorStatus(err error) int {
	switch {
	case hrapi.IsTimeout(err):
		return http.StatusGatewayTimeout
	case hrapi.StatusCode(err) == http.StatusNotFound, errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case hrapi.StatusCode(err) == http.StatusForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

// ViewerFor builds the chrome data for user. A nil user yields nil.
func ViewerFor(user *auth.User) *view.Viewer {
	if user == nil {
		return nil
	}
	return &view.Viewer{
		Name:        user.DisplayName(),
		Initials:    user.Initials(),
		Email:       user.Email,
		Role:        string(user.Role),
		RoleLabel:   user.Role.Label(),
		CompanyName: user.CompanyName,
		Nav:         Navigation(user.Role),
	}
}

// Navigation lists the sidebar links of role.
func Navigation(role auth.Role) []view.NavItem {
	switch role {
	case auth.RoleAdmin:
		return []view.NavItem{
			{Label: "Dashboard", Href: "/admin/dashboard", Icon: "building"},
			{Label: "Employees", Href: "/admin/employees", Icon: "users"},
			{Label: "Payroll", Href: "/admin/payroll", Icon: "calculator"},
			{Label: "Leave Approvals", Href: "/admin/leave", Icon: "calendar"},
			{Label: "Audit Log", Href: "/admin/audit", Icon: "file"},
			{Label: "Settings", Href: "/admin/settings", Icon: "settings"},
		}
	case auth.RoleManager:
		return []view.NavItem{
			{Label: "Dashboard", Href: "/manager/dashboard", Icon: "user"},
			{Label: "Leave Approvals", Href: "/manager/leave-approvals", Icon: "calendar"},
			{Label: "My Team", Href: "/manager/team", Icon: "users"},
			{Label: "My Payslips", Href: "/ess/payslips", Icon: "file"},
		}
	case auth.RoleEmployee:
		return []view.NavItem{
			{Label: "Dashboard", Href: "/ess/dashboard", Icon: "user"},
			{Label: "Payslips", Href: "/ess/payslips", Icon: "file"},
			{Label: "Leave", Href: "/ess/leave", Icon: "calendar"},
			{Label: "Profile", Href: "/ess/profile", Icon: "settings"},
		}
	}
	return nil
}
