package hrapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListEmployees calls GET /employees with skip, take and q.
func (c *Client) ListEmployees(ctx context.Context, q EmployeeQuery) (*EmployeeList, error) {
	take := q.Take
	if take <= 0 {
		take = 20
	}
	params := url.Values{}
	params.Set("skip", strconv.Itoa(max(q.Skip, 0)))
	params.Set("take", strconv.Itoa(take))
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	var out EmployeeList
	if err := c.do(ctx, "employees.list", http.MethodGet, "/employees", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Employee calls GET /employees/{id}.
func (c *Client) Employee(ctx context.Context, id string) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, "employees.get", http.MethodGet, "/employees/"+pathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEmployee calls POST /employees.
func (c *Client) CreateEmployee(ctx context.Context, in EmployeeInput) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, "employees.create", http.MethodPost, "/employees", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
