package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Search employees interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.authorize(ctx, rbac.PermEmployeesView); err != nil {
				return err
			}
			fetch := func(ctx context.Context, query string) (employees.ListResult, error) {
				return employees.List(ctx, a.client, query, 1)
			}
			final, err := tea.NewProgram(
				tui.NewBrowser(ctx, fetch),
				tea.WithContext(ctx),
				tea.WithInput(a.in),
				tea.WithOutput(a.out),
			).Run()
			if err != nil {
				return err
			}
			if b, ok := final.(tui.Browser); ok && errors.Is(b.Err(), tui.ErrSessionExpired) {
				return ErrSessionExpired
			}
			return nil
		},
	}
}
