package rbac

import "github.com/kola-hr/kola/internal/auth"

// Permissions checked by route gates.
const (
	PermDashboardView   = "dashboard.view"
	PermEmployeesView   = "employees.view"
	PermEmployeesCreate = "employees.create"
	PermPayrollView     = "payroll.view"
	PermPayrollRun      = "payroll.run"
	PermLeaveDecide     = "leave.decide"
	PermTeamView        = "team.view"
	PermAuditView       = "audit.view"
	PermSettingsView    = "settings.view"
	PermSelfService     = "ess.use"
)

// Permission describes a capability for the settings page.
type Permission struct {
	Name        string
	Description string
}

// Catalog lists every permission in display order.
var Catalog = []Permission{
	{Name: PermDashboardView, Description: "See the company dashboard"},
	{Name: PermEmployeesView, Description: "Browse and search employees"},
	{Name: PermEmployeesCreate, Description: "Add employees"},
	{Name: PermPayrollView, Description: "See payroll history and run details"},
	{Name: PermPayrollRun, Description: "Process payroll for a period"},
	{Name: PermLeaveDecide, Description: "Approve or deny leave requests"},
	{Name: PermTeamView, Description: "See direct reports"},
	{Name: PermAuditView, Description: "Read the dashboard audit log"},
	{Name: PermSettingsView, Description: "See role settings"},
	{Name: PermSelfService, Description: "Use employee self-service"},
}

var grants = map[auth.Role][]string{
	auth.RoleAdmin: {
		PermDashboardView, PermEmployeesView, PermEmployeesCreate, PermPayrollView,
		PermPayrollRun, PermLeaveDecide, PermAuditView, PermSettingsView, PermSelfService,
	},
	auth.RoleManager:  {PermEmployeesView, PermLeaveDecide, PermTeamView, PermSelfService},
	auth.RoleEmployee: {PermSelfService},
}
