package auth

import (
	"strings"
)

// DefaultCompanyName is shown when the company record cannot be fetched.
const DefaultCompanyName = "Kọlá HR Platform"

// Role selects which part of the dashboard a user sees.
type Role string

// Known roles. RoleUnknown is an authenticated user with no usable role.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleUnknown  Role = "unknown"
)

// ParseRole normalizes backend and form spellings (ADMIN, Admin, admin).
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleEmployee:
		return RoleEmployee
	}
	return RoleUnknown
}

// Known reports whether r is one of admin, manager or employee.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

// Wire is the upper-case spelling the backend expects on signup.
func (r Role) Wire() string {
	return strings.ToUpper(string(r))
}

// Label is the display form of the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Manager"
	case RoleEmployee:
		return "Employee"
	}
	return "No role"
}

// Home is the landing page for the role.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleManager:
		return "/manager/dashboard"
	case RoleEmployee:
		return "/ess/dashboard"
	}
	return "/account/pending"
}

// User is the hydrated identity of the signed-in person.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Role        Role   `json:"role"`
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// Initials returns up to two upper-case initials of the display name.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.DisplayName()) {
		if b.Len() >= 2 {
			break
		}
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// State of a Session.
type State int

const (
	StateUnauthenticated State = iota
	StateInitializing
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}
