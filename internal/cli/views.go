package cli

import (
	"strconv"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/payroll"
	"github.com/kola-hr/kola/internal/view"
)

type userView struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Role    string `json:"role" yaml:"role"`
	Company string `json:"company" yaml:"company"`
}

func newUserView(u *auth.User) userView {
	return userView{ID: u.ID, Name: u.DisplayName(), Email: u.Email, Role: string(u.Role), Company: u.CompanyName}
}

func (v userView) headers() []string { return []string{"Name", "Email", "Role", "Company"} }
func (v userView) rows() [][]string {
	return [][]string{{v.Name, v.Email, auth.Role(v.Role).Label(), v.Company}}
}

type employeeRow struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	JobTitle string `json:"jobTitle" yaml:"jobTitle"`
	Status   string `json:"status" yaml:"status"`
	Hired    string `json:"dateOfHire,omitempty" yaml:"dateOfHire,omitempty"`
	Manager  string `json:"manager,omitempty" yaml:"manager,omitempty"`
	Bank     string `json:"bank,omitempty" yaml:"bank,omitempty"`
}

func newEmployeeRow(e hrapi.Employee) employeeRow {
	row := employeeRow{
		ID:       e.ID,
		Name:     e.FullName(),
		Email:    e.Email,
		JobTitle: e.JobTitle,
		Status:   e.Status,
	}
	if !e.DateOfHire.IsZero() {
		row.Hired = e.DateOfHire.Format("2006-01-02")
	}
	if e.Manager != nil {
		row.Manager = e.Manager.FullName()
	}
	if e.BankName != "" || e.BankAcctNo != "" {
		row.Bank = e.BankName + " " + e.BankAcctNo
	}
	return row
}

type employeeList struct {
	Total     int           `json:"total" yaml:"total"`
	Page      int           `json:"page" yaml:"page"`
	Pages     int           `json:"pages" yaml:"pages"`
	Query     string        `json:"query,omitempty" yaml:"query,omitempty"`
	Employees []employeeRow `json:"employees" yaml:"employees"`
}

func newEmployeeList(res employees.ListResult) employeeList {
	list := employeeList{
		Total:     res.Total,
		Page:      res.Pagination.Page,
		Pages:     res.Pagination.TotalPages,
		Query:     res.Query,
		Employees: make([]employeeRow, 0, len(res.Employees)),
	}
	for _, e := range res.Employees {
		list.Employees = append(list.Employees, newEmployeeRow(e))
	}
	return list
}

func (l employeeList) headers() []string {
	return []string{"ID", "Name", "Email", "Job Title", "Status"}
}
func (l employeeList) rows() [][]string {
	out := make([][]string, 0, len(l.Employees))
	for _, e := range l.Employees {
		out = append(out, []string{e.ID, e.Name, e.Email, e.JobTitle, view.StatusLabel(e.Status)})
	}
	return out
}

func (e employeeRow) headers() []string { return []string{"Field", "Value"} }
func (e employeeRow) rows() [][]string {
	return [][]string{
		{"ID", e.ID},
		{"Name", e.Name},
		{"Email", e.Email},
		{"Job Title", e.JobTitle},
		{"Status", view.StatusLabel(e.Status)},
		{"Hired", e.Hired},
		{"Manager", e.Manager},
		{"Bank", e.Bank},
	}
}

type runRow struct {
	ID        string  `json:"id" yaml:"id"`
	Period    string  `json:"period" yaml:"period"`
	Status    string  `json:"status" yaml:"status"`
	Employees int     `json:"employees" yaml:"employees"`
	Total     float64 `json:"total" yaml:"total"`
	StartedAt string  `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
}

func newRunRow(r hrapi.PayrollRun) runRow {
	row := runRow{
		ID:        r.ID,
		Period:    r.Period(),
		Status:    r.Status,
		Employees: r.TotalEmployees,
		Total:     float64(r.TotalAmount),
	}
	if !r.StartedAt.IsZero() {
		row.StartedAt = view.FormatDateTime(r.StartedAt.Time)
	}
	return row
}

type runList []runRow

func (l runList) headers() []string { return []string{"ID", "Period", "Status", "Employees", "Total"} }
func (l runList) rows() [][]string {
	out := make([][]string, 0, len(l))
	for _, r := range l {
		out = append(out, []string{r.ID, r.Period, view.StatusLabel(r.Status), strconv.Itoa(r.Employees), view.FormatNaira(r.Total)})
	}
	return out
}

type lineRow struct {
	Employee string  `json:"employee" yaml:"employee"`
	Gross    float64 `json:"gross" yaml:"gross"`
	PAYE     float64 `json:"paye" yaml:"paye"`
	Pension  float64 `json:"pension" yaml:"pension"`
	NetPay   float64 `json:"netPay" yaml:"netPay"`
}

type runDetail struct {
	Run   runRow    `json:"run" yaml:"run"`
	Lines []lineRow `json:"lines" yaml:"lines"`
	Total float64   `json:"totalNetPay" yaml:"totalNetPay"`
}

func newRunDetail(d payroll.RunDetail) runDetail {
	out := runDetail{Run: newRunRow(d.Run), Total: float64(d.Total), Lines: make([]lineRow, 0, len(d.Lines))}
	for _, l := range d.Lines {
		name := l.EmployeeID
		if l.Employee != nil && l.Employee.FullName() != "" {
			name = l.Employee.FullName()
		}
		out.Lines = append(out.Lines, lineRow{
			Employee: name,
			Gross:    float64(l.EarningsGrossMonthly),
			PAYE:     float64(l.PAYE),
			Pension:  float64(l.PensionEmployee),
			NetPay:   float64(l.NetPay),
		})
	}
	return out
}

func (d runDetail) headers() []string {
	return []string{"Employee", "Gross", "PAYE", "Pension", "Net Pay"}
}
func (d runDetail) rows() [][]string {
	out := make([][]string, 0, len(d.Lines)+1)
	for _, l := range d.Lines {
		out = append(out, []string{l.Employee, view.FormatNaira(l.Gross), view.FormatNaira(l.PAYE), view.FormatNaira(l.Pension), view.FormatNaira(l.NetPay)})
	}
	return append(out, []string{"Total", "", "", "", view.FormatNaira(d.Total)})
}

type leaveRow struct {
	ID       string `json:"id" yaml:"id"`
	Employee string `json:"employee" yaml:"employee"`
	Type     string `json:"type" yaml:"type"`
	Start    string `json:"startDate" yaml:"startDate"`
	End      string `json:"endDate" yaml:"endDate"`
	Status   string `json:"status" yaml:"status"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func newLeaveRow(l hrapi.LeaveRequest) leaveRow {
	return leaveRow{
		ID:       l.ID,
		Employee: l.EmployeeName(),
		Type:     l.TypeName(),
		Start:    l.StartDate.Format("2006-01-02"),
		End:      l.EndDate.Format("2006-01-02"),
		Status:   l.Status,
		Reason:   l.Reason,
	}
}

type leaveList []leaveRow

func (l leaveList) headers() []string {
	return []string{"ID", "Employee", "Type", "From", "To", "Status"}
}
func (l leaveList) rows() [][]string {
	out := make([][]string, 0, len(l))
	for _, r := range l {
		out = append(out, []string{r.ID, r.Employee, r.Type, r.Start, r.End, view.StatusLabel(r.Status)})
	}
	return out
}

type payslipRow struct {
	ID     string  `json:"id" yaml:"id"`
	Period string  `json:"period" yaml:"period"`
	Gross  float64 `json:"grossPay" yaml:"grossPay"`
	Net    float64 `json:"netPay" yaml:"netPay"`
	Issued string  `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
}

type payslipList []payslipRow

func newPayslipList(slips []hrapi.Payslip) payslipList {
	out := make(payslipList, 0, len(slips))
	for _, p := range slips {
		row := payslipRow{ID: p.ID, Period: p.Period(), Gross: float64(p.GrossPay), Net: float64(p.NetPay)}
		if !p.IssuedAt.IsZero() {
			row.Issued = view.FormatDate(p.IssuedAt.Time)
		}
		out = append(out, row)
	}
	return out
}

func (l payslipList) headers() []string { return []string{"Period", "Gross", "Net Pay", "Issued"} }
func (l payslipList) rows() [][]string {
	out := make([][]string, 0, len(l))
	for _, p := range l {
		out = append(out, []string{p.Period, view.FormatNaira(p.Gross), view.FormatNaira(p.Net), p.Issued})
	}
	return out
}
