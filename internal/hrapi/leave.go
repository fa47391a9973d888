package hrapi

import (
	"context"
	"net/http"
)

// ListLeaveRequests calls GET /leave.
func (c *Client) ListLeaveRequests(ctx context.Context) ([]LeaveRequest, error) {
	var out []LeaveRequest
	if err := c.do(ctx, "leave.list", http.MethodGet, "/leave", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLeaveRequest calls POST /leave.
func (c *Client) CreateLeaveRequest(ctx context.Context, in LeaveRequestInput) (*LeaveRequest, error) {
	var out LeaveRequest
	if err := c.do(ctx, "leave.create", http.MethodPost, "/leave", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecideLeaveRequest calls PATCH /leave/{id} with the new status.
func (c *Client) DecideLeaveRequest(ctx context.Context, id string, decision LeaveDecision) (*LeaveRequest, error) {
	var out LeaveRequest
	if err := c.do(ctx, "leave.decide", http.MethodPatch, "/leave/"+pathEscape(id), nil, decision, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLeaveTypes calls GET /leave-types.
func (c *Client) ListLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	var out []LeaveType
	if err := c.do(ctx, "leave_types.list", http.MethodGet, "/leave-types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
