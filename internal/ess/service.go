// Package ess is employee self-service: own payslips, own leave and the
// profile form. Every role can use it.
package ess

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kola-hr/kola/internal/hrapi"
)

const recentPayslips = 3

// API is the part of the HR client this package uses.
type API interface {
	MyProfile(ctx context.Context) (*hrapi.Employee, error)
	UpdateMyProfile(ctx context.Context, in hrapi.ProfileUpdate) (*hrapi.Employee, error)
	MyPayslips(ctx context.Context) ([]hrapi.Payslip, error)
	MyLeaveRequests(ctx context.Context) ([]hrapi.LeaveRequest, error)
	ListLeaveTypes(ctx context.Context) ([]hrapi.LeaveType, error)
	CreateLeaveRequest(ctx context.Context, in hrapi.LeaveRequestInput) (*hrapi.LeaveRequest, error)
}

// Balance is the remaining allocation of one leave type this year.
type Balance struct {
	Type      hrapi.LeaveType
	Allocated int
	Used      int
}

// Remaining never drops below zero.
func (b Balance) Remaining() int {
	if b.Used >= b.Allocated {
		return 0
	}
	return b.Allocated - b.Used
}

// Summary is the self-service dashboard.
type Summary struct {
	LatestNetPay   hrapi.Amount
	HasPayslip     bool
	RecentPayslips []hrapi.Payslip
	PendingLeave   int
	Balances       []Balance
}

// Dashboard loads payslips, leave requests and leave types in parallel.
func Dashboard(ctx context.Context, api API, now time.Time) (Summary, error) {
	var (
		payslips []hrapi.Payslip
		requests []hrapi.LeaveRequest
		types    []hrapi.LeaveType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		payslips, err = Payslips(gctx, api)
		return err
	})
	g.Go(func() (err error) {
		requests, err = api.MyLeaveRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		types, err = api.ListLeaveTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{
		PendingLeave: hrapi.CountPending(requests),
		Balances:     Balances(types, requests, now.Year()),
	}
	if len(payslips) > 0 {
		s.HasPayslip = true
		s.LatestNetPay = payslips[0].NetPay
		s.RecentPayslips = payslips[:min(recentPayslips, len(payslips))]
	}
	return s, nil
}

// Payslips returns own payslips, newest period first.
func Payslips(ctx context.Context, api API) ([]hrapi.Payslip, error) {
	payslips, err := api.MyPayslips(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(payslips, func(i, j int) bool {
		a, b := payslips[i], payslips[j]
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear > b.PeriodYear
		}
		return a.PeriodMonth > b.PeriodMonth
	})
	return payslips, nil
}

// Balances computes per-type remaining days from approved requests that
// start in year.
func Balances(types []hrapi.LeaveType, requests []hrapi.LeaveRequest, year int) []Balance {
	used := make(map[string]int, len(types))
	for _, r := range requests {
		if r.Status != hrapi.LeaveApproved || r.StartDate.Year() != year {
			continue
		}
		used[r.LeaveTypeID] += Days(r.StartDate, r.EndDate)
	}
	out := make([]Balance, 0, len(types))
	for _, t := range types {
		out = append(out, Balance{Type: t, Allocated: t.DefaultAllocationDaysPerYear, Used: used[t.ID]})
	}
	return out
}

// Days counts calendar days from start to end inclusive. Missing or inverted
// ranges count as zero.
func Days(start, end hrapi.Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start.Time) {
		return 0
	}
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// LeavePage is the own-leave list plus the request form options.
type LeavePage struct {
	Requests []hrapi.LeaveRequest
	Types    []hrapi.LeaveType
}

// Leave loads own requests and the leave types in parallel.
func Leave(ctx context.Context, api API) (LeavePage, error) {
	var page LeavePage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.Requests, err = api.MyLeaveRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		page.Types, err = api.ListLeaveTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return LeavePage{}, err
	}
	return page, nil
}
