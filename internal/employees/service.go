// Package employees serves the employee directory: search, detail, the
// add-employee form and the manager's team view.
package employees

import (
	"context"
	"strings"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
)

// PerPage is the page size of the directory.
const PerPage = 100

// API is the part of the HR client this package uses.
type API interface {
	ListEmployees(ctx context.Context, q hrapi.EmployeeQuery) (*hrapi.EmployeeList, error)
	Employee(ctx context.Context, id string) (*hrapi.Employee, error)
	CreateEmployee(ctx context.Context, in hrapi.EmployeeInput) (*hrapi.Employee, error)
}

// ListResult is one page of the directory.
type ListResult struct {
	Employees  []hrapi.Employee
	Total      int
	Query      string
	Pagination shared.Pagination
}

// List fetches one page of employees matching query.
func List(ctx context.Context, api API, query string, page int) (ListResult, error) {
	query = strings.TrimSpace(query)
	pagination := shared.NewPagination(page, PerPage, 0)
	list, err := api.ListEmployees(ctx, hrapi.EmployeeQuery{Skip: pagination.Skip(), Take: PerPage, Search: query})
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Employees:  list.Employees,
		Total:      list.Total,
		Query:      query,
		Pagination: shared.NewPagination(page, PerPage, list.Total),
	}, nil
}

// Team returns the direct reports of managerID from the first directory page.
func Team(ctx context.Context, api API, managerID string) ([]hrapi.Employee, error) {
	list, err := api.ListEmployees(ctx, hrapi.EmployeeQuery{Take: PerPage})
	if err != nil {
		return nil, err
	}
	team := make([]hrapi.Employee, 0, len(list.Employees))
	for _, e := range list.Employees {
		if managerID != "" && (e.ManagerID == managerID || (e.Manager != nil && e.Manager.ID == managerID)) {
			team = append(team, e)
		}
	}
	return team, nil
}
