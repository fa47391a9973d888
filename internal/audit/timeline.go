package audit

import "time"

// Actions recorded by the dashboard.
const (
	ActionLogin          = "auth.login"
	ActionLogout         = "auth.logout"
	ActionEmployeeCreate = "employee.create"
	ActionPayrollRun     = "payroll.run"
	ActionLeaveApprove   = "leave.approve"
	ActionLeaveDeny      = "leave.deny"
	ActionLeaveRequest   = "leave.request"
	ActionProfileUpdate  = "profile.update"
)

// Entry is one dashboard action.
type Entry struct {
	At         time.Time
	ActorID    string
	ActorEmail string
	CompanyID  string
	Action     string
	Entity     string
	EntityID   string
	Meta       map[string]any
}

// TimelineFilters narrows the timeline.
type TimelineFilters struct {
	CompanyID string
	From      time.Time
	To        time.Time
	Actor     string
	Action    string
	Page      int
	PageSize  int
}

// WindowParams is one page of a filtered query.
type WindowParams struct {
	CompanyID string
	From      time.Time
	To        time.Time
	Actor     string
	Action    string
	Offset    int
	Limit     int
}

// PagingInfo stores simple pagination metadata.
type PagingInfo struct {
	Page     int
	HasNext  bool
	PageSize int
	PrevPage int
	NextPage int
}

// Result wraps timeline rows with paging.
type Result struct {
	Rows   []Entry
	Paging PagingInfo
}

// FiltersViewModel holds filter values for the template.
type FiltersViewModel struct {
	From   time.Time
	To     time.Time
	Actor  string
	Action string
}

// ViewModel is the audit page data.
type ViewModel struct {
	Enabled bool
	Filters FiltersViewModel
	Actions []string
	Rows    []Entry
	Paging  PagingInfo
}

// KnownActions lists the action filter options.
var KnownActions = []string{
	ActionLogin, ActionLogout, ActionEmployeeCreate, ActionPayrollRun,
	ActionLeaveApprove, ActionLeaveDeny, ActionLeaveRequest, ActionProfileUpdate,
}
