package hrapi

import (
	"context"
	"net/http"
)

// MyProfile calls GET /ess/profile.
func (c *Client) MyProfile(ctx context.Context) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, "ess.profile", http.MethodGet, "/ess/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMyProfile calls PATCH /ess/profile.
func (c *Client) UpdateMyProfile(ctx context.Context, in ProfileUpdate) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, "ess.profile_update", http.MethodPatch, "/ess/profile", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyPayslips calls GET /ess/payslips.
func (c *Client) MyPayslips(ctx context.Context) ([]Payslip, error) {
	var out []Payslip
	if err := c.do(ctx, "ess.payslips", http.MethodGet, "/ess/payslips", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyLeaveRequests calls GET /ess/leave.
func (c *Client) MyLeaveRequests(ctx context.Context) ([]LeaveRequest, error) {
	var out []LeaveRequest
	if err := c.do(ctx, "ess.leave", http.MethodGet, "/ess/leave", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
