// Package tui is the interactive employee browser of kolactl. Every keystroke
// in the search box starts a directory fetch; a Sequencer keeps a slow answer
// to an old query from replacing the answer to a newer one.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/view"
)

// Fetcher loads the first directory page matching query.
type Fetcher func(ctx context.Context, query string) (employees.ListResult, error)

// ErrSessionExpired ends the browser when the backend rejects the credential.
var ErrSessionExpired = errors.New("session expired")

type resultMsg struct {
	seq    uint64
	query  string
	result employees.ListResult
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("29"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Browser is the bubbletea model of the employee browser.
type Browser struct {
	ctx   context.Context
	fetch Fetcher
	seq   *Sequencer

	input   textinput.Model
	table   table.Model
	spinner spinner.Model

	query   string
	total   int
	loading bool
	err     error
	width   int
}

// NewBrowser builds a browser that loads data through fetch.
func NewBrowser(ctx context.Context, fetch Fetcher) Browser {
	input := textinput.New()
	input.Placeholder = "Search by name or email"
	input.Prompt = "Search: "
	input.Focus()

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return Browser{
		ctx:     ctx,
		fetch:   fetch,
		seq:     &Sequencer{},
		input:   input,
		table:   t,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
}

func columns(width int) []table.Column {
	name := max(20, width/4)
	email := max(24, width/3)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Email", Width: email},
		{Title: "Job title", Width: 20},
		{Title: "Status", Width: 10},
	}
}

// Err returns the error that ended the browser, if any.
func (m Browser) Err() error { return m.err }

// Init starts the cursor blink, the spinner and the first load.
func (m Browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.search(""))
}

// search issues a numbered fetch for query.
func (m *Browser) search(query string) tea.Cmd {
	seq := m.seq.Next()
	m.loading = true
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		res, err := fetch(ctx, query)
		return resultMsg{seq: seq, query: query, result: res, err: err}
	}
}

// Update handles key presses, window resizes and fetch results.
func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up, keys.Down):
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			return m, tea.Batch(cmd, m.search(after))
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(5, msg.Height-8))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		return m.apply(msg)
	}
	return m, nil
}

func (m Browser) apply(msg resultMsg) (tea.Model, tea.Cmd) {
	if !m.seq.Accept(msg.seq) {
		return m, nil
	}
	m.loading = m.seq.Pending()
	if msg.err != nil {
		if errors.Is(msg.err, hrapi.ErrUnauthorized) {
			m.err = ErrSessionExpired
			return m, tea.Quit
		}
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	m.query = msg.query
	m.total = msg.result.Total
	rows := make([]table.Row, 0, len(msg.result.Employees))
	for _, e := range msg.result.Employees {
		rows = append(rows, table.Row{e.FullName(), e.Email, e.JobTitle, view.StatusLabel(e.Status)})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
	return m, nil
}

// View renders the search box, the result table and a status line.
func (m Browser) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Kọlá HR · Employees"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading…")
	case m.err != nil:
		b.WriteString(errorStyle.Render(shared.UserSafeMessage(m.err)))
	default:
		b.WriteString(mutedStyle.Render(status(m.total, m.query)))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(keys.help()))
	b.WriteString("\n")
	return b.String()
}

func status(total int, query string) string {
	found := fmt.Sprintf("%d %s found", total, view.Plural(total, "employee", "employees"))
	if query != "" {
		found += fmt.Sprintf(" for %q", query)
	}
	return found
}
