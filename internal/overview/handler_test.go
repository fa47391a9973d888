package overview_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/overview"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shell/shelltest"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	h := overview.NewHandler(nil, shelltest.Renderer(t), nil, rbac.Middleware{})
	r := chi.NewRouter()
	r.Route("/admin/dashboard", h.MountAdmin)
	r.Route("/manager/dashboard", h.MountManager)
	return r
}

type recordingBackend struct {
	mu    sync.Mutex
	paths []string
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.paths = append(b.paths, r.URL.RequestURI())
	b.mu.Unlock()
	switch r.URL.Path {
	case "/employees":
		shelltest.JSON(w, http.StatusOK, `{"employees":[
			{"id":"e1","firstName":"Ada","lastName":"Obi","managerId":"m1"},
			{"id":"e2","firstName":"Bola","lastName":"Ade","managerId":"m2"}
		],"total":42}`)
	case "/payroll":
		shelltest.JSON(w, http.StatusOK, `[{"id":"oct","periodYear":2024,"periodMonth":10},{"id":"nov","periodYear":2024,"periodMonth":11}]`)
	case "/payroll/nov/lines":
		shelltest.JSON(w, http.StatusOK, `[{"netPay":"1000000"},{"netPay":234567}]`)
	case "/leave":
		shelltest.JSON(w, http.StatusOK, `[{"id":"1","status":"pending"},{"id":"2","status":"approved"},{"id":"3","status":"pending"}]`)
	default:
		http.NotFound(w, r)
	}
}

func TestAdminDashboardStats(t *testing.T) {
	backend := &recordingBackend{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	req := shelltest.Request(t, http.MethodGet, "/admin/dashboard", srv.URL, shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t), req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "42")
	assert.Contains(t, body, "₦1,234,567.00")
	assert.Contains(t, body, "requests awaiting a decision")
	assert.Contains(t, backend.paths, "/employees?skip=0&take=100")
	assert.NotContains(t, backend.paths, "/payroll/oct/lines")
}

func TestAdminDashboardFailureShowsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/leave" {
			shelltest.JSON(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		(&recordingBackend{}).ServeHTTP(w, r)
	}))
	defer srv.Close()

	req := shelltest.Request(t, http.MethodGet, "/admin/dashboard", srv.URL, shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t), req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Couldn&#39;t load dashboard")
	assert.Contains(t, rec.Body.String(), `href="/admin/dashboard"`)
}

func TestManagerDashboard(t *testing.T) {
	srv := httptest.NewServer(&recordingBackend{})
	defer srv.Close()

	req := shelltest.Request(t, http.MethodGet, "/manager/dashboard", srv.URL, shelltest.Profile{ID: "m1", Role: "manager"}, nil)
	rec := shelltest.Serve(newRouter(t), req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ada Obi")
	assert.NotContains(t, body, "Bola Ade")
	assert.Contains(t, body, "Direct report")
}

func TestManagerDashboardRejectsAdmin(t *testing.T) {
	req := shelltest.Request(t, http.MethodGet, "/manager/dashboard", "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
