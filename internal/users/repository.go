package users

import (
	"context"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// Store is the user collection keyed by username.
type Store interface {
	// FindByUsername returns shared.ErrNotFound when no document matches.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// InsertIfAbsent atomically creates the user or returns
	// shared.ErrDuplicateUser when the username is taken.
	InsertIfAbsent(ctx context.Context, user User) error
	// SetRole updates user_type, returning shared.ErrNotFound when no
	// document matches.
	SetRole(ctx context.Context, username string, role shared.Role) error
	// List returns every user ordered by username.
	List(ctx context.Context) ([]User, error)
}
