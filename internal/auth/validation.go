package auth

import (
	"errors"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/kola-hr/kola/internal/shared"
)

// MinPasswordLength is enforced on signup.
const MinPasswordLength = 6

// ValidationError is a form rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "auth: " + e.Message
}

// UserMessage returns the message shown next to the form.
func (e *ValidationError) UserMessage() string { return e.Message }

// Unwrap lets errors.Is(err, shared.ErrValidation) match.
func (e *ValidationError) Unwrap() error { return shared.ErrValidation }

// Credentials is the login form.
type Credentials struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required"`
	CompanyID string `validate:"required"`
}

// SignupInput is the signup form.
type SignupInput struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string
	Role            Role   `validate:"required,oneof=admin manager employee"`
	CompanyID       string `validate:"required"`
	FirstName       string `validate:"max=100"`
	LastName        string `validate:"max=100"`
}

var formValidator = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Email":     "Enter a valid email address",
	"Password":  "Password is required",
	"CompanyID": "Company ID is required",
	"Role":      "Choose a role",
	"FirstName": "First name is too long",
	"LastName":  "Last name is too long",
}

// ValidateCredentials checks the login form.
func ValidateCredentials(in Credentials) error {
	return structError(formValidator.Struct(in))
}

// ValidateSignup checks the signup form. A password mismatch is reported
// before the length rule.
func ValidateSignup(in SignupInput) error {
	if in.Password != in.ConfirmPassword {
		return &ValidationError{Field: "ConfirmPassword", Message: "Passwords do not match"}
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return &ValidationError{Field: "Password", Message: "Password must be at least 6 characters"}
	}
	return structError(formValidator.Struct(in))
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	field := fieldErrs[0].Field()
	msg, ok := fieldMessages[field]
	if !ok {
		msg = fieldErrs[0].Error()
	}
	return &ValidationError{Field: field, Message: msg}
}
