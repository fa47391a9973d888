package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/payroll"
	"github.com/kola-hr/kola/internal/rbac"
)

func newPayrollCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Payroll history and processing",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List payroll runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermPayrollView); err != nil {
				return err
			}
			runs, err := payroll.History(cmd.Context(), a.client)
			if err != nil {
				return apiError(err)
			}
			out := make(runList, 0, len(runs))
			for _, r := range runs {
				out = append(out, newRunRow(r))
			}
			return a.render(out)
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a run with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermPayrollView); err != nil {
				return err
			}
			detail, err := payroll.Detail(cmd.Context(), a.client, args[0])
			if err != nil {
				return apiError(err)
			}
			return a.render(newRunDetail(detail))
		},
	}

	defaults := payroll.DefaultRunForm(time.Now())
	form := defaults
	run := &cobra.Command{
		Use:   "run",
		Short: "Process payroll for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermPayrollRun); err != nil {
				return err
			}
			if errs := form.Validate(validator.New()); len(errs) > 0 {
				msgs := make([]string, 0, len(errs))
				for _, msg := range errs {
					msgs = append(msgs, msg)
				}
				sort.Strings(msgs)
				return errors.New(strings.Join(msgs, "; "))
			}
			created, err := a.client.CreatePayrollRun(cmd.Context(), hrapi.PayrollRunInput{
				PeriodYear:  form.PeriodYear,
				PeriodMonth: form.PeriodMonth,
			})
			if err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.out, "Payroll for %s processed (run %s)\n", hrapi.PeriodLabel(form.PeriodYear, form.PeriodMonth), created.ID)
			return nil
		},
	}
	run.Flags().IntVar(&form.PeriodMonth, "month", defaults.PeriodMonth, "period month (1-12)")
	run.Flags().IntVar(&form.PeriodYear, "year", defaults.PeriodYear, "period year")

	cmd.AddCommand(list, show, run)
	return cmd
}
