package rbac

import (
	"strings"

	"github.com/kola-hr/kola/internal/auth"
)

// Roles lists the assignable roles in display order.
var Roles = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee}

// EffectivePermissions returns the permissions granted to role.
func EffectivePermissions(role auth.Role) []string {
	granted := grants[role]
	out := make([]string, len(granted))
	copy(out, granted)
	return out
}

// Can reports whether role holds perm.
func Can(role auth.Role, perm string) bool {
	return hasAnyPermission(grants[role], normalizePermissions([]string{perm}))
}

// MatrixRow is one permission across all roles.
type MatrixRow struct {
	Permission Permission
	Granted    []bool
}

// Matrix builds the role/permission grid shown on the settings page.
func Matrix() []MatrixRow {
	rows := make([]MatrixRow, 0, len(Catalog))
	for _, perm := range Catalog {
		row := MatrixRow{Permission: perm, Granted: make([]bool, len(Roles))}
		for i, role := range Roles {
			row.Granted[i] = Can(role, perm.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, seen := unique[p]; seen {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAllPermissions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
