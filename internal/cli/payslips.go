package cli

import (
	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/ess"
	"github.com/kola-hr/kola/internal/rbac"
)

func newPayslipsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "payslips",
		Short: "List your payslips",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermSelfService); err != nil {
				return err
			}
			slips, err := ess.Payslips(cmd.Context(), a.client)
			if err != nil {
				return apiError(err)
			}
			return a.render(newPayslipList(slips))
		},
	}
}
