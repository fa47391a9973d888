package hrapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Amount is a money value. The backend sends numbers or decimal strings.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("hrapi: amount %q: %w", s, err)
		}
		*a = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

const dateLayout = "2006-01-02"

// Date accepts calendar dates and RFC 3339 timestamps.
type Date struct {
	time.Time
}

// ParseDate parses a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("hrapi: date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if h, m, s := d.Clock(); h == 0 && m == 0 && s == 0 && d.Nanosecond() == 0 {
		return json.Marshal(d.Format(dateLayout))
	}
	return json.Marshal(d.Format(time.RFC3339Nano))
}

// Status values shared by records.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveDenied   = "denied"

	PayrollDraft     = "draft"
	PayrollProcessed = "processed"
	PayrollPosted    = "posted"
)

// Company is the organization that scopes all other records.
type Company struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PencomNo         string `json:"pencomNo,omitempty"`
	NSITFNo          string `json:"nsitfNo,omitempty"`
	NHFEnabled       bool   `json:"nhfEnabled"`
	WorkWeekSchedule string `json:"workWeekSchedule,omitempty"`
	Status           string `json:"status,omitempty"`
}

// Employee is a member of a company.
type Employee struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"companyId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role,omitempty"`
	DateOfHire Date      `json:"dateOfHire"`
	JobTitle   string    `json:"jobTitle"`
	BankAcctNo string    `json:"bankAcctNo,omitempty"`
	BankName   string    `json:"bankName,omitempty"`
	Status     string    `json:"status"`
	ManagerID  string    `json:"managerId,omitempty"`
	Manager    *Employee `json:"manager,omitempty"`
	Salary     Amount    `json:"salary,omitempty"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Initials returns up to two upper-case initials.
func (e Employee) Initials() string {
	var b strings.Builder
	for _, part := range []string{e.FirstName, e.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// EmployeeList is one page of employees.
type EmployeeList struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
}

// EmployeeQuery holds list parameters.
type EmployeeQuery struct {
	Skip   int
	Take   int
	Search string
}

// EmployeeInput creates an employee.
type EmployeeInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	JobTitle   string `json:"jobTitle"`
	DateOfHire string `json:"dateOfHire"`
	BankAcctNo string `json:"bankAcctNo,omitempty"`
	BankName   string `json:"bankName,omitempty"`
	ManagerID  string `json:"managerId,omitempty"`
}

// ProfileUpdate is the self-service subset of Employee.
type ProfileUpdate struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	BankAcctNo string `json:"bankAcctNo,omitempty"`
	BankName   string `json:"bankName,omitempty"`
}

// PayrollRun is a per-period payroll batch.
type PayrollRun struct {
	ID                string `json:"id"`
	CompanyID         string `json:"companyId"`
	PeriodYear        int    `json:"periodYear"`
	PeriodMonth       int    `json:"periodMonth"`
	Status            string `json:"status"`
	StartedBy         string `json:"startedBy,omitempty"`
	StartedAt         Date   `json:"startedAt"`
	CompletedAt       Date   `json:"completedAt"`
	RulesetVersionRef string `json:"rulesetVersionRef,omitempty"`
	TotalEmployees    int    `json:"totalEmployees,omitempty"`
	TotalAmount       Amount `json:"totalAmount,omitempty"`
}

// Period renders the run period, e.g. "November 2024".
func (p PayrollRun) Period() string {
	return PeriodLabel(p.PeriodYear, p.PeriodMonth)
}

// PeriodLabel renders a month/year pair.
func PeriodLabel(year, month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(year)
	}
	return fmt.Sprintf("%s %d", time.Month(month), year)
}

// PayrollRunInput starts a payroll run.
type PayrollRunInput struct {
	PeriodYear  int `json:"periodYear"`
	PeriodMonth int `json:"periodMonth"`
}

// PayrollLineItem is one employee's computation in a run.
type PayrollLineItem struct {
	ID                   string          `json:"id"`
	PayrollRunID         string          `json:"payrollRunId"`
	EmployeeID           string          `json:"employeeId"`
	Employee             *Employee       `json:"employee,omitempty"`
	EarningsGrossMonthly Amount          `json:"earningsGrossMonthly"`
	PensionEmployee      Amount          `json:"pensionEmployee"`
	PensionEmployer      Amount          `json:"pensionEmployer"`
	NHFEmployee          Amount          `json:"nhfEmployee"`
	NSITFEmployer        Amount          `json:"nsitfEmployer"`
	TaxableIncome        Amount          `json:"taxableIncome"`
	PAYE                 Amount          `json:"paye"`
	NetPay               Amount          `json:"netPay"`
	Details              json.RawMessage `json:"detailsJson,omitempty"`
}

// TotalNetPay sums net pay across lines.
func TotalNetPay(lines []PayrollLineItem) Amount {
	var total Amount
	for _, line := range lines {
		total += line.NetPay
	}
	return total
}

// Payslip is an employee's own view of a payroll line.
type Payslip struct {
	ID           string `json:"id"`
	PayrollRunID string `json:"payrollRunId,omitempty"`
	PeriodYear   int    `json:"periodYear"`
	PeriodMonth  int    `json:"periodMonth"`
	GrossPay     Amount `json:"grossPay"`
	NetPay       Amount `json:"netPay"`
	IssuedAt     Date   `json:"issuedAt"`
}

// Period renders the payslip period.
func (p Payslip) Period() string {
	return PeriodLabel(p.PeriodYear, p.PeriodMonth)
}

// LeaveType is a category of leave with a yearly allocation.
type LeaveType struct {
	ID                           string          `json:"id"`
	CompanyID                    string          `json:"companyId"`
	Name                         string          `json:"name"`
	DefaultAllocationDaysPerYear int             `json:"defaultAllocationDaysPerYear"`
	CarryoverPolicy              json.RawMessage `json:"carryoverPolicyJson,omitempty"`
}

// LeaveRequest is an employee's time-off application.
type LeaveRequest struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	LeaveTypeID string     `json:"leaveTypeId"`
	StartDate   Date       `json:"startDate"`
	EndDate     Date       `json:"endDate"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	ApprovedBy  string     `json:"approvedBy,omitempty"`
	ApprovedAt  Date       `json:"approvedAt"`
	LeaveType   *LeaveType `json:"leaveType,omitempty"`
	Employee    *Employee  `json:"employee,omitempty"`
}

// EmployeeName falls back to "Unknown Employee" when not expanded.
func (l LeaveRequest) EmployeeName() string {
	if l.Employee == nil || l.Employee.FullName() == "" {
		return "Unknown Employee"
	}
	return l.Employee.FullName()
}

// TypeName falls back to "Leave" when the type is not expanded.
func (l LeaveRequest) TypeName() string {
	if l.LeaveType == nil || l.LeaveType.Name == "" {
		return "Leave"
	}
	return l.LeaveType.Name
}

// IsPending reports whether the request awaits a decision.
func (l LeaveRequest) IsPending() bool {
	return l.Status == LeavePending
}

// CountPending counts pending requests.
func CountPending(requests []LeaveRequest) int {
	n := 0
	for _, r := range requests {
		if r.IsPending() {
			n++
		}
	}
	return n
}

// LeaveRequestInput files a leave request.
type LeaveRequestInput struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason,omitempty"`
}

// LeaveDecision approves or denies a request.
type LeaveDecision struct {
	Status string `json:"status"`
}
