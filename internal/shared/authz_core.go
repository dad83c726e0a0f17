package shared

import (
	"strings"
	"time"
)

// Role is the coarse authorization tag stored as user_type.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles lists every role a user can hold.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole normalises raw input into a known role.
func ParseRole(raw string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, role := range Roles() {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// Principal is the identity snapshot a session carries. It is copied from the
// user record when the session is established and never refreshed afterwards,
// so a role change only shows up after the user signs in again.
type Principal struct {
	Username        string    `json:"username"`
	Role            Role      `json:"user_type"`
	CreatedAt       time.Time `json:"created_at"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}

// IsAdmin reports whether the snapshot holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
