package domain

import "strings"

// Role is one of the fixed roles known to the system.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
	RoleSuperAdmin Role = "SuperAdmin"
)

// DefaultRole is assigned to every newly registered account.
const DefaultRole = RoleUser

// AllRoles returns the full role set seeded at startup.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleSuperAdmin}
}

// Normalized returns the role name in its canonical uppercase form.
func (r Role) Normalized() string {
	return strings.ToUpper(string(r))
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, bool) {
	for _, r := range AllRoles() {
		if r.Normalized() == strings.ToUpper(name) {
			return r, true
		}
	}
	return "", false
}
