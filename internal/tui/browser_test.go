package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/hrapi"
)

func directory(names ...string) employees.ListResult {
	res := employees.ListResult{Total: len(names)}
	for _, n := range names {
		res.Employees = append(res.Employees, hrapi.Employee{FirstName: n, LastName: "Test", Email: n + "@kola.ng", Status: hrapi.StatusActive})
	}
	return res
}

func fixedFetcher(byQuery map[string]employees.ListResult) Fetcher {
	return func(_ context.Context, query string) (employees.ListResult, error) {
		return byQuery[query], nil
	}
}

func update(t *testing.T, m Browser, msg tea.Msg) Browser {
	t.Helper()
	next, _ := m.Update(msg)
	b, ok := next.(Browser)
	require.True(t, ok)
	return b
}

func firstNames(rows []table.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[0])
	}
	return out
}

func TestBrowserDiscardsStaleSearchResult(t *testing.T) {
	m := NewBrowser(context.Background(), fixedFetcher(map[string]employees.ListResult{
		"a":  directory("Ada", "Abu", "Amaka"),
		"ad": directory("Ada"),
	}))

	slow := m.search("a")
	fast := m.search("ad")

	m = update(t, m, fast())
	m = update(t, m, slow())

	assert.Equal(t, []string{"Ada Test"}, firstNames(m.table.Rows()))
	assert.Equal(t, "ad", m.query)
	assert.Equal(t, 1, m.total)
	assert.False(t, m.loading)
}

func TestBrowserAppliesResultsInOrder(t *testing.T) {
	m := NewBrowser(context.Background(), fixedFetcher(map[string]employees.ListResult{
		"":  directory("Ada", "Bola"),
		"b": directory("Bola"),
	}))

	first := m.search("")
	second := m.search("b")

	m = update(t, m, first())
	assert.True(t, m.loading, "newer search still in flight")
	assert.Len(t, m.table.Rows(), 2)

	m = update(t, m, second())
	assert.False(t, m.loading)
	assert.Equal(t, []string{"Bola Test"}, firstNames(m.table.Rows()))
	assert.Contains(t, m.View(), `1 employee found for "b"`)
}

func TestBrowserTypingStartsSearch(t *testing.T) {
	m := NewBrowser(context.Background(), fixedFetcher(map[string]employees.ListResult{"c": directory("Chidi")}))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	m = next.(Browser)
	assert.Equal(t, "c", m.input.Value())
	assert.True(t, m.loading)
	assert.True(t, m.seq.Pending())
}

func TestBrowserQuitsOnExpiredSession(t *testing.T) {
	m := NewBrowser(context.Background(), func(context.Context, string) (employees.ListResult, error) {
		return employees.ListResult{}, &hrapi.Error{Status: 401, Message: "Unauthorized"}
	})

	next, cmd := m.Update(m.search("")())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, next.(Browser).Err(), ErrSessionExpired)
}

func TestBrowserShowsFetchError(t *testing.T) {
	m := NewBrowser(context.Background(), func(context.Context, string) (employees.ListResult, error) {
		return employees.ListResult{}, errors.New("boom")
	})

	m = update(t, m, m.search("")())
	require.Error(t, m.Err())
	assert.NotContains(t, m.View(), "boom")
}
