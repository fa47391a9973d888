package hrapi

import (
	"context"
	"net/http"
)

// ListPayrollRuns calls GET /payroll. Runs are returned newest first.
func (c *Client) ListPayrollRuns(ctx context.Context) ([]PayrollRun, error) {
	var out []PayrollRun
	if err := c.do(ctx, "payroll.list", http.MethodGet, "/payroll", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePayrollRun calls POST /payroll.
func (c *Client) CreatePayrollRun(ctx context.Context, in PayrollRunInput) (*PayrollRun, error) {
	var out PayrollRun
	if err := c.do(ctx, "payroll.create", http.MethodPost, "/payroll", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayrollRunLines calls GET /payroll/{id}/lines.
func (c *Client) PayrollRunLines(ctx context.Context, runID string) ([]PayrollLineItem, error) {
	var out []PayrollLineItem
	if err := c.do(ctx, "payroll.lines", http.MethodGet, "/payroll/"+pathEscape(runID)+"/lines", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
