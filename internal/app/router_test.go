package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/app"
	"github.com/kola-hr/kola/internal/audit"
	audithttp "github.com/kola-hr/kola/internal/audit/http"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/ess"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/leave"
	"github.com/kola-hr/kola/internal/observability"
	"github.com/kola-hr/kola/internal/overview"
	"github.com/kola-hr/kola/internal/payroll"
	"github.com/kola-hr/kola/internal/platform/cache"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
	"github.com/kola-hr/kola/internal/tokenstore"
	"github.com/kola-hr/kola/internal/view"
)

const cookieName = "kola_session"

type storedSession struct {
	Values  map[string]string     `json:"values"`
	Flashes []shared.FlashMessage `json:"flashes"`
}

type harness struct {
	t       *testing.T
	mr      *miniredis.Miniredis
	router  http.Handler
	metrics *observability.Metrics
}

func newHarness(t *testing.T, backend http.Handler) *harness {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	store := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(store, cookieName, "session-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	engine, err := view.NewEngine()
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	client := hrapi.New(hrapi.Config{BaseURL: srv.URL}, hrapi.WithObserver(metrics))
	pages := shell.NewRenderer(engine, csrf, nil)
	gates := rbac.Middleware{}
	var auditLog *audit.Service

	cfg := &app.Config{AppEnv: "test", RateLimitPerMinute: 1000, AppRequestTimeout: 5 * time.Second}
	router := app.NewRouter(app.RouterParams{
		Logger:             app.NewLogger(&app.Config{LogLevel: "error"}),
		Config:             cfg,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		AuthMiddleware:     auth.Middleware{Client: client},
		RBACMiddleware:     gates,
		AuthHandler:        auth.NewHandler(nil, engine, sessions, csrf),
		OverviewHandler:    overview.NewHandler(nil, pages, auditLog, gates),
		EmployeesHandler:   employees.NewHandler(nil, pages, auditLog, gates),
		PayrollHandler:     payroll.NewHandler(nil, pages, auditLog, gates).WithLocker(shared.NewLocker(store, time.Minute)),
		LeaveHandler:       leave.NewHandler(nil, pages, auditLog, gates),
		ESSHandler:         ess.NewHandler(nil, pages, auditLog, gates),
		AuditHandler:       audithttp.NewHandler(nil, auditLog, pages),
		PermissionsHandler: rbac.NewPermissionsHandler(pages, gates),
		Metrics:            metrics,
		HealthCheck: func(ctx context.Context) error {
			return cache.Ping(ctx, store)
		},
	})
	return &harness{t: t, mr: mr, router: router, metrics: metrics}
}

// seed stores a cookie session holding values and returns its id.
func (h *harness) seed(values map[string]string) string {
	h.t.Helper()
	id := fmt.Sprintf("sess-%d", time.Now().UnixNano())
	data, err := json.Marshal(storedSession{Values: values})
	require.NoError(h.t, err)
	require.NoError(h.t, h.mr.Set("kola:session:"+id, string(data)))
	return id
}

func (h *harness) session(id string) storedSession {
	h.t.Helper()
	raw, err := h.mr.Get("kola:session:" + id)
	require.NoError(h.t, err)
	var s storedSession
	require.NoError(h.t, json.Unmarshal([]byte(raw), &s))
	return s
}

func (h *harness) do(req *http.Request, sessionID string) *httptest.ResponseRecorder {
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target, sessionID string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil), sessionID)
}

// backend is a scriptable HR API.
type backend struct {
	mu    sync.Mutex
	role  string
	auth  []string
	paths []string
	route map[string]http.HandlerFunc
}

func newBackend(role string) *backend {
	return &backend{role: role, route: map[string]http.HandlerFunc{}}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	b.paths = append(b.paths, r.URL.Path)
	handler, ok := b.route[r.URL.Path]
	role := b.role
	b.mu.Unlock()

	if ok {
		handler(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/ess/profile":
		_ = json.NewEncoder(w).Encode(hrapi.Employee{ID: "e1", CompanyID: "c1", FirstName: "Ada", LastName: "Obi", Email: "ada@acme.ng", Role: role})
	case "/companies/c1":
		_ = json.NewEncoder(w).Encode(hrapi.Company{ID: "c1", Name: "Acme Nigeria"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func (b *backend) hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.paths {
		if p == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))

	rec := h.get("/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReportsUnreachableSessionStore(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))
	h.mr.Close()

	rec := h.get("/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "session store unreachable")
}

func TestStaticAssetsAreCached(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))

	rec := h.get("/static/css/app.css", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestAnonymousVisitorIsSentToLogin(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))

	rec := h.get("/admin/dashboard", "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestEmployeeListEndToEnd(t *testing.T) {
	api := newBackend("ADMIN")
	var query url.Values
	api.route["/employees"] = func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		query = r.URL.Query()
		api.mu.Unlock()
		var items []string
		for i := 1; i <= 5; i++ {
			items = append(items, fmt.Sprintf(`{"id":"e%d","firstName":"Worker","lastName":"No%d","email":"w%d@acme.ng","jobTitle":"Analyst","status":"active"}`, i, i, i))
		}
		writeJSON(w, http.StatusOK, `{"employees":[`+strings.Join(items, ",")+`],"total":5}`)
	}
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	rec := h.get("/admin/employees", sid)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "5 employees found")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, body, fmt.Sprintf("/admin/employees/e%d", i))
	}
	assert.Equal(t, "0", query.Get("skip"))
	assert.Equal(t, "100", query.Get("take"))
	for _, header := range api.authHeaders() {
		assert.Equal(t, "Bearer abc", header)
	}
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestExpiredCredentialAtInitClearsStorage(t *testing.T) {
	api := newBackend("EMPLOYEE")
	api.route["/ess/profile"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"token expired"}`)
	}
	h := newHarness(t, api)
	sid := h.seed(map[string]string{
		tokenstore.KeyAccessToken: "abc",
		tokenstore.KeyUser:        `{"id":"e1","role":"employee"}`,
	})

	rec := h.get("/ess/dashboard", sid)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{auth.LoginPath}, rec.Header().Values("Location"))
	stored := h.session(sid)
	assert.NotContains(t, stored.Values, tokenstore.KeyAccessToken)
	assert.NotContains(t, stored.Values, tokenstore.KeyUser)
	require.Len(t, stored.Flashes, 1)
	assert.Equal(t, auth.SessionExpiredMessage, stored.Flashes[0].Message)
	assert.Equal(t, 1, api.hits("/ess/profile"))
}

func TestParallelUnauthorizedRedirectsOnce(t *testing.T) {
	api := newBackend("ADMIN")
	var arrived sync.WaitGroup
	arrived.Add(3)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()
	reject := func(w http.ResponseWriter, r *http.Request) {
		arrived.Done()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusUnauthorized, `{"message":"expired"}`)
	}
	api.route["/employees"] = reject
	api.route["/payroll"] = reject
	api.route["/leave"] = reject
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	rec := h.get("/admin/dashboard", sid)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{auth.LoginPath}, rec.Header().Values("Location"))
	assert.NotContains(t, rec.Body.String(), "Couldn't load")
	stored := h.session(sid)
	assert.NotContains(t, stored.Values, tokenstore.KeyAccessToken)
	require.Len(t, stored.Flashes, 1)
	assert.Equal(t, auth.SessionExpiredMessage, stored.Flashes[0].Message)
}

func TestEmployeeCannotOpenAdminPages(t *testing.T) {
	h := newHarness(t, newBackend("EMPLOYEE"))
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	for _, target := range []string{"/admin/employees", "/admin/payroll", "/admin/audit", "/admin/settings", "/manager/team"} {
		rec := h.get(target, sid)
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
	}
}

func TestManagerReachesSharedApprovalQueue(t *testing.T) {
	api := newBackend("MANAGER")
	api.route["/leave"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"l1","status":"pending","startDate":"2024-11-04","endDate":"2024-11-06","employee":{"id":"e2","firstName":"Bola","lastName":"Ade"},"leaveType":{"id":"t1","name":"Annual"}}]`)
	}
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	rec := h.get("/manager/leave-approvals", sid)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bola Ade")
	assert.Contains(t, rec.Body.String(), `action="/manager/leave-approvals/l1/approve"`)
}

func TestLegacyLeaveApprovalsLinkRedirects(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	rec := h.get("/admin/leave-approvals", sid)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/admin/leave", rec.Header().Get("Location"))
}

func TestAuditLogDisabledWithoutDatabase(t *testing.T) {
	h := newHarness(t, newBackend("ADMIN"))
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})

	rec := h.get("/admin/audit", sid)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Audit log unavailable")
}

func TestMutationWithoutCSRFTokenIsRejected(t *testing.T) {
	api := newBackend("ADMIN")
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc", shared.CSRFSessionKey: "tok"})

	form := url.Values{"periodMonth": {"11"}, "periodYear": {"2024"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/payroll", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := h.do(req, sid)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, api.hits("/payroll"))
}

func TestProcessPayrollWithCSRFToken(t *testing.T) {
	api := newBackend("ADMIN")
	var created hrapi.PayrollRunInput
	api.route["/payroll"] = func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&created)
			writeJSON(w, http.StatusCreated, `{"id":"r9","periodYear":2024,"periodMonth":11,"status":"completed"}`)
			return
		}
		writeJSON(w, http.StatusOK, `[]`)
	}
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc", shared.CSRFSessionKey: "tok"})

	form := url.Values{"periodMonth": {"11"}, "periodYear": {"2024"}, shared.CSRFFormField: {"tok"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/payroll", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := h.do(req, sid)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, hrapi.PayrollRunInput{PeriodYear: 2024, PeriodMonth: 11}, created)
	stored := h.session(sid)
	require.NotEmpty(t, stored.Flashes)
	assert.Equal(t, "Payroll for November 2024 processed", stored.Flashes[0].Message)
}

func TestMetricsRecordBackendCalls(t *testing.T) {
	api := newBackend("ADMIN")
	api.route["/employees"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"employees":[],"total":0}`)
	}
	h := newHarness(t, api)
	sid := h.seed(map[string]string{tokenstore.KeyAccessToken: "abc"})
	require.Equal(t, http.StatusOK, h.get("/admin/employees", sid).Code)

	rec := h.get("/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `kola_backend_requests_total{code="200",operation="employees.list"} 1`)
	assert.Contains(t, rec.Body.String(), `kola_http_requests_total{code="200",route="/admin/employees`)
}
