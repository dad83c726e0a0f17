package users

import (
	"context"
	"sort"
	"sync"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// MemoryStore keeps users in process memory. Used for local development and
// tests; contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// FindByUsername fetches a user by username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

// InsertIfAbsent stores the user unless the username exists.
func (s *MemoryStore) InsertIfAbsent(ctx context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return shared.ErrDuplicateUser
	}
	s.users[user.Username] = user
	return nil
}

// SetRole updates the stored role.
func (s *MemoryStore) SetRole(ctx context.Context, username string, role shared.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	s.users[username] = u
	return nil
}

// List returns all users ordered by username.
func (s *MemoryStore) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
