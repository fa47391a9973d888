package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kola-hr/kola/internal/hrapi"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleManager, ParseRole(" manager "))
	assert.Equal(t, RoleEmployee, ParseRole("Employee"))
	assert.Equal(t, RoleUnknown, ParseRole("owner"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", RoleAdmin.Home())
	assert.Equal(t, "/manager/dashboard", RoleManager.Home())
	assert.Equal(t, "/ess/dashboard", RoleEmployee.Home())
	assert.Equal(t, "/account/pending", RoleUnknown.Home())
}

func TestResolveRoleOrder(t *testing.T) {
	ada := hrapi.Employee{ID: "e1", Email: "ada@acme.ng"}
	admin := ada
	admin.Role = "admin"
	assert.Equal(t, RoleAdmin, resolveRole(admin, `{"role":"manager"}`, ""))
	assert.Equal(t, RoleManager, resolveRole(ada, `{"role":"manager"}`, ""))
	assert.Equal(t, RoleManager, resolveRole(ada, `{"id":"e1","email":"ADA@acme.ng","role":"manager"}`, ""))
	assert.Equal(t, RoleUnknown, resolveRole(ada, `{"role":"unknown"}`, "opaque-token"))
	assert.Equal(t, RoleUnknown, resolveRole(ada, "not json", "a.b.c"))
}

func TestResolveRoleIgnoresOtherAccount(t *testing.T) {
	bob := hrapi.Employee{ID: "e2", Email: "bob@acme.ng"}
	assert.Equal(t, RoleUnknown, resolveRole(bob, `{"id":"e1","role":"admin"}`, "opaque-token"))
	assert.Equal(t, RoleUnknown, resolveRole(bob, `{"email":"ada@acme.ng","role":"admin"}`, "opaque-token"))
}

func TestUserInitials(t *testing.T) {
	assert.Equal(t, "AO", User{FirstName: "Ada", LastName: "Obi"}.Initials())
	assert.Equal(t, "A", User{Email: "ada@acme.ng"}.Initials())
}
