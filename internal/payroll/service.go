// Package payroll lists payroll runs, starts new runs and shows the line
// items of one run.
package payroll

import (
	"context"
	"fmt"
	"sort"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
)

// API is the part of the HR client this package uses.
type API interface {
	ListPayrollRuns(ctx context.Context) ([]hrapi.PayrollRun, error)
	CreatePayrollRun(ctx context.Context, in hrapi.PayrollRunInput) (*hrapi.PayrollRun, error)
	PayrollRunLines(ctx context.Context, runID string) ([]hrapi.PayrollLineItem, error)
}

// RunDetail is a run with its computed lines.
type RunDetail struct {
	Run   hrapi.PayrollRun
	Lines []hrapi.PayrollLineItem
	Total hrapi.Amount
}

// History returns all runs, newest period first.
func History(ctx context.Context, api API) ([]hrapi.PayrollRun, error) {
	runs, err := api.ListPayrollRuns(ctx)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(runs)
	return runs, nil
}

// SortNewestFirst orders runs by period, then start time, descending.
func SortNewestFirst(runs []hrapi.PayrollRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear > b.PeriodYear
		}
		if a.PeriodMonth != b.PeriodMonth {
			return a.PeriodMonth > b.PeriodMonth
		}
		return a.StartedAt.After(b.StartedAt.Time)
	})
}

// Latest returns the most recent run, or nil when there is none.
func Latest(runs []hrapi.PayrollRun) *hrapi.PayrollRun {
	if len(runs) == 0 {
		return nil
	}
	sorted := append([]hrapi.PayrollRun(nil), runs...)
	SortNewestFirst(sorted)
	return &sorted[0]
}

// LatestNetPay sums net pay over the newest run's lines. It is zero when no
// run exists.
func LatestNetPay(ctx context.Context, api API) (hrapi.Amount, error) {
	runs, err := api.ListPayrollRuns(ctx)
	if err != nil {
		return 0, err
	}
	latest := Latest(runs)
	if latest == nil {
		return 0, nil
	}
	lines, err := api.PayrollRunLines(ctx, latest.ID)
	if err != nil {
		return 0, err
	}
	return hrapi.TotalNetPay(lines), nil
}

// Detail loads run id and its lines.
func Detail(ctx context.Context, api API, id string) (RunDetail, error) {
	runs, err := api.ListPayrollRuns(ctx)
	if err != nil {
		return RunDetail{}, err
	}
	var run *hrapi.PayrollRun
	for i := range runs {
		if runs[i].ID == id {
			run = &runs[i]
			break
		}
	}
	if run == nil {
		return RunDetail{}, fmt.Errorf("payroll run %s: %w", id, shared.ErrNotFound)
	}
	lines, err := api.PayrollRunLines(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{Run: *run, Lines: lines, Total: hrapi.TotalNetPay(lines)}, nil
}
