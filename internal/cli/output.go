package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// tabular is a value that can be printed as a table.
type tabular interface {
	headers() []string
	rows() [][]string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// render writes v in the selected format. Table output uses v's rows; the
// structured formats encode v itself.
func (a *app) render(v tabular) error {
	return writeValue(a.out, a.output, v)
}

func writeValue(w io.Writer, format string, v tabular) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	rows := v.rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Nothing to show.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(v.headers()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}
