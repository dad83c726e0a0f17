package users

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// Service handles role management over the user store.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(store Store) *Service {
	return &Service{store: store, validate: shared.NewValidator()}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Promote grants the admin role. Sessions already held by the user keep
// their old role until the user signs in again.
func (s *Service) Promote(ctx context.Context, username string) error {
	return s.setRole(ctx, username, shared.RoleAdmin)
}

// Demote returns the user to the plain user role.
func (s *Service) Demote(ctx context.Context, username string) error {
	return s.setRole(ctx, username, shared.RoleUser)
}

func (s *Service) setRole(ctx context.Context, username string, role shared.Role) error {
	if err := s.validate.Var(username, shared.UsernameRule); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.store.SetRole(ctx, username, role)
}
