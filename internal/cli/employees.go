package cli

import (
	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/rbac"
)

func newEmployeesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Browse the employee directory",
	}

	var search string
	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List employees, 100 per page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermEmployeesView); err != nil {
				return err
			}
			res, err := employees.List(cmd.Context(), a.client, search, page)
			if err != nil {
				return apiError(err)
			}
			return a.render(newEmployeeList(res))
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "filter by name or email")
	list.Flags().IntVarP(&page, "page", "p", 1, "page number")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermEmployeesView); err != nil {
				return err
			}
			e, err := a.client.Employee(cmd.Context(), args[0])
			if err != nil {
				return apiError(err)
			}
			return a.render(newEmployeeRow(*e))
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}
