package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	audithttp "github.com/kola-hr/kola/internal/audit/http"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/ess"
	"github.com/kola-hr/kola/internal/leave"
	"github.com/kola-hr/kola/internal/observability"
	"github.com/kola-hr/kola/internal/overview"
	"github.com/kola-hr/kola/internal/payroll"
	"github.com/kola-hr/kola/internal/platform/httpx"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware

	AuthHandler        *auth.Handler
	OverviewHandler    *overview.Handler
	EmployeesHandler   *employees.Handler
	PayrollHandler     *payroll.Handler
	LeaveHandler       *leave.Handler
	ESSHandler         *ess.Handler
	AuditHandler       *audithttp.Handler
	PermissionsHandler *rbac.PermissionsHandler
	Metrics            *observability.Metrics

	// HealthCheck backs /healthz; nil reports healthy.
	HealthCheck func(ctx context.Context) error
}

// NewRouter constructs the chi.Router with the dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.HealthCheck != nil {
			if err := params.HealthCheck(r.Context()); err != nil {
				params.Logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
				httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "session store unreachable")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	// Everything below runs with a hydrated session and a bound HR client.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.Hydrate)

		params.AuthHandler.MountRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Route("/dashboard", params.OverviewHandler.MountAdmin)
			r.Route("/employees", params.EmployeesHandler.MountRoutes)
			r.Route("/payroll", params.PayrollHandler.MountRoutes)
			r.Route("/leave", params.LeaveHandler.MountRoutes)
			r.Get("/leave-approvals", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/leave", http.StatusMovedPermanently)
			})
			if params.AuditHandler != nil {
				r.Route("/audit", func(r chi.Router) {
					r.Use(params.RBACMiddleware.RequireAny(rbac.PermAuditView))
					params.AuditHandler.MountRoutes(r)
				})
			}
			if params.PermissionsHandler != nil {
				r.Route("/settings", params.PermissionsHandler.MountRoutes)
			}
		})

		r.Route("/manager", func(r chi.Router) {
			r.Route("/dashboard", params.OverviewHandler.MountManager)
			r.Route("/team", params.EmployeesHandler.MountTeam)
			r.Route("/leave-approvals", params.LeaveHandler.MountRoutes)
		})

		r.Route("/ess", params.ESSHandler.MountRoutes)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in the browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
