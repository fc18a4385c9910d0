package models

import (
	"slices"
	"strings"
)

// Role controls which screens and actions a user may access.
type Role string

const (
	RoleVolunteer Role = "VOLUNTEER"
	RolePolice    Role = "POLICE"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every known role.
var Roles = []Role{RoleVolunteer, RolePolice, RoleAdmin}

// ParseRole normalises the case of s. The second return value is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, slices.Contains(Roles, r)
}

// HasRole reports whether user holds role. ADMIN satisfies every role check.
func HasRole(user *User, role Role) bool {
	if user == nil {
		return false
	}
	return user.Role == RoleAdmin || user.Role == role
}

// HasAnyRole reports whether user holds one of roles. ADMIN satisfies every role check,
// even when roles is empty.
func HasAnyRole(user *User, roles []Role) bool {
	if user == nil {
		return false
	}
	return user.Role == RoleAdmin || slices.Contains(roles, user.Role)
}
