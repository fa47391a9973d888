package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/leave"
	"github.com/kola-hr/kola/internal/rbac"
)

func newLeaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Review and decide leave requests",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List leave requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermLeaveDecide); err != nil {
				return err
			}
			q, err := leave.Load(cmd.Context(), a.client, status)
			if err != nil {
				return apiError(err)
			}
			out := make(leaveList, 0, len(q.Requests))
			for _, r := range q.Requests {
				out = append(out, newLeaveRow(r))
			}
			return a.render(out)
		},
	}
	list.Flags().StringVar(&status, "status", leave.FilterAll, "filter: "+strings.Join(leave.Filters, ", "))

	cmd.AddCommand(list,
		decideCmd(a, "approve", hrapi.LeaveApproved),
		decideCmd(a, "deny", hrapi.LeaveDenied),
	)
	return cmd
}

func decideCmd(a *app, verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.authorize(cmd.Context(), rbac.PermLeaveDecide); err != nil {
				return err
			}
			if _, err := leave.Decide(cmd.Context(), a.client, args[0], status); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.out, "Leave request %s %s\n", args[0], status)
			return nil
		},
	}
}
