package audithttp

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/audit"
	"github.com/kola-hr/kola/internal/shell/shelltest"
)

type stubTimeline struct {
	enabled bool
	rows    []audit.Entry
	last    audit.TimelineFilters
}

func (s *stubTimeline) Enabled() bool { return s.enabled }

func (s *stubTimeline) Timeline(_ context.Context, f audit.TimelineFilters) (audit.Result, error) {
	s.last = f
	return audit.Result{Rows: s.rows, Paging: audit.PagingInfo{Page: f.Page, PageSize: f.PageSize}}, nil
}

func (s *stubTimeline) Export(_ context.Context, f audit.TimelineFilters) ([]audit.Entry, error) {
	s.last = f
	return s.rows, nil
}

func newRouter(t *testing.T, svc TimelineService) http.Handler {
	t.Helper()
	h := NewHandler(nil, svc, shelltest.Renderer(t))
	h.now = func() time.Time { return time.Date(2024, time.November, 10, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/admin/audit", h.MountRoutes)
	return r
}

var sampleRows = []audit.Entry{{
	At:         time.Date(2024, time.November, 4, 9, 30, 0, 0, time.UTC),
	ActorID:    "u1",
	ActorEmail: "ada@acme.ng",
	Action:     audit.ActionPayrollRun,
	Entity:     "payroll_run",
	EntityID:   "r1",
}}

func TestTimelineDisabled(t *testing.T) {
	req := shelltest.Request(t, http.MethodGet, "/admin/audit", "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t, &stubTimeline{}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Audit log unavailable")
}

func TestTimelineParsesFilters(t *testing.T) {
	svc := &stubTimeline{enabled: true, rows: sampleRows}
	req := shelltest.Request(t, http.MethodGet, "/admin/audit?from=2024-11-01&to=2024-11-05&action=payroll.run&page=2&page_size=500", "http://127.0.0.1:0",
		shelltest.Profile{Role: "admin", CompanyID: "c1"}, nil)
	rec := shelltest.Serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@acme.ng")
	assert.Contains(t, rec.Body.String(), "4 Nov 2024, 09:30")

	assert.Equal(t, "c1", svc.last.CompanyID)
	assert.Equal(t, time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC), svc.last.From)
	assert.Equal(t, time.Date(2024, time.November, 6, 0, 0, 0, 0, time.UTC), svc.last.To)
	assert.Equal(t, audit.ActionPayrollRun, svc.last.Action)
	assert.Equal(t, 2, svc.last.Page)
	assert.Equal(t, maxPageSize, svc.last.PageSize)
}

func TestTimelineDefaultsToLastWeek(t *testing.T) {
	svc := &stubTimeline{enabled: true}
	req := shelltest.Request(t, http.MethodGet, "/admin/audit", "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC), svc.last.From)
	assert.Equal(t, time.Date(2024, time.November, 11, 0, 0, 0, 0, time.UTC), svc.last.To)
	assert.Equal(t, defaultPageSize, svc.last.PageSize)
}

func TestTimelineRejectsBadFilters(t *testing.T) {
	cases := map[string]string{
		"/admin/audit?from=yesterday":                "invalid from",
		"/admin/audit?from=2024-11-09&to=2024-11-01": "invalid range",
		"/admin/audit?page=0":                        "invalid page",
		"/admin/audit?from=2024-01-01&to=2024-11-01": "invalid range",
	}
	for target, want := range cases {
		svc := &stubTimeline{enabled: true}
		req := shelltest.Request(t, http.MethodGet, target, "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
		rec := shelltest.Serve(newRouter(t, svc), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), want, target)
	}
}

func TestExportCSV(t *testing.T) {
	svc := &stubTimeline{enabled: true, rows: sampleRows}
	req := shelltest.Request(t, http.MethodGet, "/admin/audit/export.csv?from=2024-11-01&to=2024-11-05", "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t, svc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "ada@acme.ng")
	assert.Contains(t, lines[1], audit.ActionPayrollRun)
}

func TestExportDisabled(t *testing.T) {
	req := shelltest.Request(t, http.MethodGet, "/admin/audit/export.csv", "http://127.0.0.1:0", shelltest.Profile{Role: "admin"}, nil)
	rec := shelltest.Serve(newRouter(t, &stubTimeline{}), req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
