// Package leave serves the leave approval queue shared by administrators
// and managers.
package leave

import (
	"context"
	"fmt"
	"strings"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
)

// Filter values accepted by the status filter. FilterAll shows every request.
const FilterAll = "all"

// Filters lists the status filter options in display order.
var Filters = []string{FilterAll, hrapi.LeavePending, hrapi.LeaveApproved, hrapi.LeaveDenied}

// API is the part of the HR client this package uses.
type API interface {
	ListLeaveRequests(ctx context.Context) ([]hrapi.LeaveRequest, error)
	DecideLeaveRequest(ctx context.Context, id string, decision hrapi.LeaveDecision) (*hrapi.LeaveRequest, error)
}

// Queue is the filtered list of requests.
type Queue struct {
	Requests []hrapi.LeaveRequest
	Pending  int
	Filter   string
}

// NormalizeFilter maps unknown filter values to FilterAll.
func NormalizeFilter(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, f := range Filters {
		if raw == f {
			return f
		}
	}
	return FilterAll
}

// Load fetches the requests and applies filter.
func Load(ctx context.Context, api API, filter string) (Queue, error) {
	requests, err := api.ListLeaveRequests(ctx)
	if err != nil {
		return Queue{}, err
	}
	filter = NormalizeFilter(filter)
	q := Queue{Pending: hrapi.CountPending(requests), Filter: filter}
	if filter == FilterAll {
		q.Requests = requests
		return q, nil
	}
	for _, r := range requests {
		if r.Status == filter {
			q.Requests = append(q.Requests, r)
		}
	}
	return q, nil
}

// PendingCount returns the number of requests awaiting a decision.
func PendingCount(ctx context.Context, api API) (int, error) {
	requests, err := api.ListLeaveRequests(ctx)
	if err != nil {
		return 0, err
	}
	return hrapi.CountPending(requests), nil
}

// Decide approves or denies request id. status must be LeaveApproved or
// LeaveDenied.
func Decide(ctx context.Context, api API, id, status string) (*hrapi.LeaveRequest, error) {
	if status != hrapi.LeaveApproved && status != hrapi.LeaveDenied {
		return nil, fmt.Errorf("leave decision %q: %w", status, shared.ErrValidation)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("leave request id: %w", shared.ErrValidation)
	}
	return api.DecideLeaveRequest(ctx, id, hrapi.LeaveDecision{Status: status})
}
