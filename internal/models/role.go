package models

import "strings"

// Role is the coarse privilege level of a principal.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a stored or claimed role name to a Role. Unknown names
// fall back to RoleMember.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

func (r Role) String() string { return string(r) }

// IsAdmin reports whether the role carries administrator privileges.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Actor is the authenticated principal a request acts on behalf of.
type Actor struct {
	ID   string
	Role Role
}
