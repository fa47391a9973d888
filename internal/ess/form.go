package ess

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kola-hr/kola/internal/hrapi"
)

// LeaveForm requests time off.
type LeaveForm struct {
	LeaveTypeID string `validate:"required"`
	StartDate   string `validate:"required,datetime=2006-01-02"`
	EndDate     string `validate:"required,datetime=2006-01-02"`
	Reason      string `validate:"max=500"`
}

// ProfileForm is the editable part of the own profile.
type ProfileForm struct {
	FirstName  string `validate:"required,max=100"`
	LastName   string `validate:"required,max=100"`
	BankName   string `validate:"omitempty,max=120"`
	BankAcctNo string `validate:"omitempty,numeric,len=10"`
}

var fieldMessages = map[string]string{
	"LeaveTypeID": "Choose a leave type",
	"StartDate":   "Enter the start date as YYYY-MM-DD",
	"EndDate":     "Enter the end date as YYYY-MM-DD",
	"Reason":      "Reason must be at most 500 characters",
	"FirstName":   "First name is required",
	"LastName":    "Last name is required",
	"BankName":    "Bank name is too long",
	"BankAcctNo":  "Account number must be 10 digits",
}

func trimmed(v url.Values, key string) string { return strings.TrimSpace(v.Get(key)) }

// LeaveFormFromValues reads the posted leave form.
func LeaveFormFromValues(v url.Values) LeaveForm {
	return LeaveForm{
		LeaveTypeID: trimmed(v, "leaveTypeId"),
		StartDate:   trimmed(v, "startDate"),
		EndDate:     trimmed(v, "endDate"),
		Reason:      trimmed(v, "reason"),
	}
}

// Validate checks fields and that the range is not inverted.
func (f LeaveForm) Validate(v *validator.Validate) map[string]string {
	errs := structErrors(v, f)
	if len(errs) == 0 {
		start, _ := time.Parse(time.DateOnly, f.StartDate)
		end, _ := time.Parse(time.DateOnly, f.EndDate)
		if end.Before(start) {
			errs["EndDate"] = "End date must be on or after the start date"
		}
	}
	return errs
}

// Input converts the form to the API payload.
func (f LeaveForm) Input() hrapi.LeaveRequestInput {
	return hrapi.LeaveRequestInput{LeaveTypeID: f.LeaveTypeID, StartDate: f.StartDate, EndDate: f.EndDate, Reason: f.Reason}
}

// ProfileFormFrom prefills the form from the profile.
func ProfileFormFrom(e *hrapi.Employee) ProfileForm {
	if e == nil {
		return ProfileForm{}
	}
	return ProfileForm{FirstName: e.FirstName, LastName: e.LastName, BankName: e.BankName, BankAcctNo: e.BankAcctNo}
}

// ProfileFormFromValues reads the posted profile form.
func ProfileFormFromValues(v url.Values) ProfileForm {
	return ProfileForm{
		FirstName:  trimmed(v, "firstName"),
		LastName:   trimmed(v, "lastName"),
		BankName:   trimmed(v, "bankName"),
		BankAcctNo: trimmed(v, "bankAcctNo"),
	}
}

// Validate returns field errors keyed by field name.
func (f ProfileForm) Validate(v *validator.Validate) map[string]string {
	return structErrors(v, f)
}

// Update converts the form to the API payload.
func (f ProfileForm) Update() hrapi.ProfileUpdate {
	return hrapi.ProfileUpdate{FirstName: f.FirstName, LastName: f.LastName, BankName: f.BankName, BankAcctNo: f.BankAcctNo}
}

func structErrors(v *validator.Validate, form any) map[string]string {
	errs := make(map[string]string)
	err := v.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["general"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if msg, ok := fieldMessages[fe.Field()]; ok {
			errs[fe.Field()] = msg
			continue
		}
		errs[fe.Field()] = fe.Error()
	}
	return errs
}
