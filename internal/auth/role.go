package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kola-hr/kola/internal/hrapi"
)

// resolveRole picks the first usable role from the profile, the user object
// persisted next to the credential, and the token's own claims. A stored
// user that names a different account is ignored.
func resolveRole(profile hrapi.Employee, storedUser, token string) Role {
	if role := ParseRole(profile.Role); role.Known() {
		return role
	}
	if storedUser != "" {
		var stored User
		if err := json.Unmarshal([]byte(storedUser), &stored); err == nil && stored.Role.Known() && sameAccount(stored, profile) {
			return stored.Role
		}
	}
	return claimRole(token)
}

func sameAccount(stored User, profile hrapi.Employee) bool {
	if stored.ID != "" && stored.ID != profile.ID {
		return false
	}
	if stored.Email != "" && !strings.EqualFold(stored.Email, profile.Email) {
		return false
	}
	return true
}

// claimRole reads a "role" (or first "roles") claim from a JWT without
// verifying it. The backend verifies the token on every call; the claim is
// only used to choose navigation.
func claimRole(token string) Role {
	if token == "" {
		return RoleUnknown
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return RoleUnknown
	}
	if raw, ok := claims["role"].(string); ok {
		return ParseRole(raw)
	}
	if list, ok := claims["roles"].([]any); ok {
		for _, item := range list {
			if raw, ok := item.(string); ok {
				if role := ParseRole(raw); role.Known() {
					return role
				}
			}
		}
	}
	return RoleUnknown
}
