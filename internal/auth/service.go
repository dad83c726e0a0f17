package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/gatehouse/internal/shared"
	"github.com/odyssey-erp/gatehouse/internal/users"
)

// dummyPassword is hashed once so unknown usernames still pay for a compare.
const dummyPassword = "gatehousedummy"

// Service wraps authentication business rules.
type Service struct {
	store    users.Store
	hasher   PasswordHasher
	validate *validator.Validate
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a new Service.
func NewService(store users.Store, hasher PasswordHasher) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		validate: shared.NewValidator(),
		now:      time.Now,
	}
}

// SignUp validates the credentials and creates a plain user. The store
// rejects a taken username atomically, so two concurrent sign-ups for the same
// name cannot both succeed.
func (s *Service) SignUp(ctx context.Context, creds Credentials) (*users.User, error) {
	if err := s.check(creds); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, err
	}
	user := users.User{
		Username:     creds.Username,
		PasswordHash: hashed,
		Role:         shared.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertIfAbsent(ctx, user); err != nil {
		if errors.Is(err, shared.ErrDuplicateUser) {
			return nil, shared.ErrDuplicateUser
		}
		return nil, fmt.Errorf("auth: sign up %s: %w", creds.Username, err)
	}
	return &user, nil
}

// SignIn validates credentials against the stored hash. Unknown usernames and
// wrong passwords both return shared.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*users.User, error) {
	if err := s.check(creds); err != nil {
		return nil, err
	}
	user, err := s.store.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.burnCompare(creds.Password)
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: sign in %s: %w", creds.Username, err)
	}
	ok, err := s.hasher.Compare(creds.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) check(creds Credentials) error {
	if err := s.validate.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", shared.ErrValidation, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Compare(password, s.dummyHash)
	}
}
