package employees

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kola-hr/kola/internal/hrapi"
)

// Form is the add-employee form.
type Form struct {
	FirstName  string `validate:"required,max=100"`
	LastName   string `validate:"required,max=100"`
	Email      string `validate:"required,email"`
	JobTitle   string `validate:"required,max=120"`
	DateOfHire string `validate:"required,datetime=2006-01-02"`
	BankName   string `validate:"omitempty,max=120"`
	BankAcctNo string `validate:"omitempty,numeric,len=10"`
	ManagerID  string
}

var fieldMessages = map[string]string{
	"FirstName":  "First name is required",
	"LastName":   "Last name is required",
	"Email":      "Enter a valid email address",
	"JobTitle":   "Job title is required",
	"DateOfHire": "Enter the hire date as YYYY-MM-DD",
	"BankName":   "Bank name is too long",
	"BankAcctNo": "Account number must be 10 digits",
}

// FormFromValues reads the posted form.
func FormFromValues(v url.Values) Form {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }
	return Form{
		FirstName:  get("firstName"),
		LastName:   get("lastName"),
		Email:      get("email"),
		JobTitle:   get("jobTitle"),
		DateOfHire: get("dateOfHire"),
		BankName:   get("bankName"),
		BankAcctNo: get("bankAcctNo"),
		ManagerID:  get("managerId"),
	}
}

// Validate returns field errors keyed by field name.
func (f Form) Validate(v *validator.Validate) map[string]string {
	errs := make(map[string]string)
	if err := v.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			errs["general"] = err.Error()
			return errs
		}
		for _, fe := range fieldErrs {
			if msg, ok := fieldMessages[fe.Field()]; ok {
				errs[fe.Field()] = msg
			} else {
				errs[fe.Field()] = fe.Error()
			}
		}
	}
	return errs
}

// Input converts the form to the API payload.
func (f Form) Input() hrapi.EmployeeInput {
	return hrapi.EmployeeInput{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		JobTitle:   f.JobTitle,
		DateOfHire: f.DateOfHire,
		BankName:   f.BankName,
		BankAcctNo: f.BankAcctNo,
		ManagerID:  f.ManagerID,
	}
}
