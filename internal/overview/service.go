// Package overview builds the administrator and manager dashboards. Each
// dashboard fans its reads out in parallel; the first failure fails the page.
package overview

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/leave"
	"github.com/kola-hr/kola/internal/payroll"
)

// statsPageSize matches the directory query the dashboard counts with.
const statsPageSize = 100

// API is the part of the HR client the dashboards use.
type API interface {
	employees.API
	payroll.API
	leave.API
}

// AdminStats are the administrator dashboard cards.
type AdminStats struct {
	TotalEmployees int
	MonthlyPayroll hrapi.Amount
	PendingLeave   int
}

// ManagerStats are the manager dashboard cards.
type ManagerStats struct {
	TeamSize         int
	PendingApprovals int
	Team             []hrapi.Employee
}

// Admin loads the employee total, the latest run's net pay and the pending
// leave count.
func Admin(ctx context.Context, api API) (AdminStats, error) {
	var stats AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := api.ListEmployees(gctx, hrapi.EmployeeQuery{Skip: 0, Take: statsPageSize})
		if err != nil {
			return err
		}
		stats.TotalEmployees = list.Total
		return nil
	})
	g.Go(func() (err error) {
		stats.MonthlyPayroll, err = payroll.LatestNetPay(gctx, api)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingLeave, err = leave.PendingCount(gctx, api)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}
	return stats, nil
}

// Manager loads the direct reports of managerID and the pending approvals.
func Manager(ctx context.Context, api API, managerID string) (ManagerStats, error) {
	var stats ManagerStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Team, err = employees.Team(gctx, api, managerID)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingApprovals, err = leave.PendingCount(gctx, api)
		return err
	})
	if err := g.Wait(); err != nil {
		return ManagerStats{}, err
	}
	stats.TeamSize = len(stats.Team)
	return stats, nil
}
