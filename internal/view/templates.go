package view

import (
	"fmt"
	"html/template"
	"net/http"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one sidebar link.
type NavItem struct {
	Label string
	Href  string
	Icon  string
}

// Viewer describes the signed-in user for the dashboard chrome.
type Viewer struct {
	Name        string
	Initials    string
	Email       string
	Role        string
	RoleLabel   string
	CompanyName string
	Nav         []NavItem
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Viewer      *Viewer
	Data        any
}

var (
	nigerianEnglish = language.MustParse("en-NG")
	printer         = message.NewPrinter(nigerianEnglish)
	titleCaser      = cases.Title(language.English)
)

// FormatNaira renders an amount as Naira with grouping and two decimals.
func FormatNaira(amount float64) string {
	if amount < 0 {
		return "-" + printer.Sprintf("₦%.2f", -amount)
	}
	return printer.Sprintf("₦%.2f", amount)
}

// FormatDate renders a calendar date, e.g. "4 November 2024".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2 January 2006")
}

// FormatDateTime renders a timestamp, e.g. "4 Nov 2024, 09:30".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2 Jan 2006, 15:04")
}

// StatusLabel title-cases backend status values ("pending_review" -> "Pending Review").
func StatusLabel(status string) string {
	if status == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(status), "_", " "))
}

// Plural picks the singular or plural noun for n.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"naira": func(v any) string {
			rv := reflect.ValueOf(v)
			switch {
			case rv.CanFloat():
				return FormatNaira(rv.Float())
			case rv.CanInt():
				return FormatNaira(float64(rv.Int()))
			}
			return fmt.Sprint(v)
		},
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"status":         StatusLabel,
		"plural":         Plural,
		"number":         func(n int) string { return printer.Sprintf("%d", n) },
		"monthName": func(m int) string {
			if m < 1 || m > 12 {
				return ""
			}
			return time.Month(m).String()
		},
		"months": func() []time.Month {
			out := make([]time.Month, 0, 12)
			for m := time.January; m <= time.December; m++ {
				out = append(out, m)
			}
			return out
		},
		"active": func(current, href string) bool {
			return current == href || strings.HasPrefix(current, href+"/")
		},
		"lower": strings.ToLower,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// ErrorPanel is the data of pages/error.html: a failed fetch with a link
// that re-runs it.
type ErrorPanel struct {
	Title    string
	Message  string
	RetryURL string
}
