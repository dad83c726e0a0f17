package users

import (
	"time"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// User represents a stored account.
type User struct {
	Username     string
	PasswordHash string
	Role         shared.Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == shared.RoleAdmin
}

// Principal snapshots the identity carried by a session.
func (u User) Principal(authenticatedAt time.Time) shared.Principal {
	return shared.Principal{
		Username:        u.Username,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
		AuthenticatedAt: authenticatedAt,
	}
}
