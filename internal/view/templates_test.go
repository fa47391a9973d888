package view

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦1,234,567.00", FormatNaira(1234567))
	assert.Equal(t, "₦0.00", FormatNaira(0))
	assert.Equal(t, "-₦250.50", FormatNaira(-250.5))
}

func TestFormatDates(t *testing.T) {
	ts := time.Date(2024, time.November, 4, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "4 November 2024", FormatDate(ts))
	assert.Equal(t, "4 Nov 2024, 09:30", FormatDateTime(ts))
	assert.Equal(t, "—", FormatDate(time.Time{}))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", StatusLabel("pending"))
	assert.Equal(t, "Pending Review", StatusLabel("PENDING_REVIEW"))
	assert.Equal(t, "Unknown", StatusLabel(""))
}

func TestRenderErrorPanel(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/error.html", TemplateData{
		Title:       "Employees",
		CurrentPath: "/admin/employees",
		Viewer:      &Viewer{Name: "Ada Obi", Initials: "AO", RoleLabel: "Administrator", CompanyName: "Acme", Nav: []NavItem{{Label: "Employees", Href: "/admin/employees"}}},
		Data:        ErrorPanel{Title: "Couldn't load employees", Message: "The HR service took too long to respond.", RetryURL: "/admin/employees?q=ada"},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "Couldn&#39;t load employees")
	assert.Contains(t, body, "Try again")
	assert.Contains(t, body, `href="/admin/employees?q=ada"`)
	assert.True(t, strings.Contains(body, `class="nav-link active"`))
}
