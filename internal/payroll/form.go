package payroll

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RunForm selects the period to process.
type RunForm struct {
	PeriodMonth int `validate:"min=1,max=12"`
	PeriodYear  int `validate:"min=2000,max=2100"`
}

// DefaultRunForm preselects the current period.
func DefaultRunForm(now time.Time) RunForm {
	return RunForm{PeriodMonth: int(now.Month()), PeriodYear: now.Year()}
}

// RunFormFromValues reads the posted form. Unparseable numbers become zero
// and fail validation.
func RunFormFromValues(v url.Values) RunForm {
	month, _ := strconv.Atoi(strings.TrimSpace(v.Get("periodMonth")))
	year, _ := strconv.Atoi(strings.TrimSpace(v.Get("periodYear")))
	return RunForm{PeriodMonth: month, PeriodYear: year}
}

// Validate returns field errors keyed by field name.
func (f RunForm) Validate(v *validator.Validate) map[string]string {
	errs := make(map[string]string)
	if err := v.Struct(f); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "PeriodMonth":
					errs[fe.Field()] = "Choose a month"
				case "PeriodYear":
					errs[fe.Field()] = "Enter a year between 2000 and 2100"
				}
			}
		} else {
			errs["general"] = err.Error()
		}
	}
	return errs
}
