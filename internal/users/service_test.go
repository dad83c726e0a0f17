package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

func seededService(t *testing.T, names ...string) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	for _, name := range names {
		require.NoError(t, store.InsertIfAbsent(context.Background(), User{
			Username:  name,
			Role:      shared.RoleUser,
			CreatedAt: time.Now().UTC(),
		}))
	}
	return NewService(store), store
}

func TestPromoteAndDemote(t *testing.T) {
	svc, store := seededService(t, "alice")
	ctx := context.Background()

	require.NoError(t, svc.Promote(ctx, "alice"))
	got, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	require.NoError(t, svc.Demote(ctx, "alice"))
	got, err = store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleUser, got.Role)
}

func TestPromoteUnknownUser(t *testing.T) {
	svc, _ := seededService(t)
	assert.ErrorIs(t, svc.Promote(context.Background(), "ghost"), shared.ErrNotFound)
}

func TestPromoteRejectsMalformedUsername(t *testing.T) {
	svc, _ := seededService(t, "alice")
	for _, name := range []string{"", "ab", "al ice", `{"$ne":null}`} {
		assert.ErrorIs(t, svc.Promote(context.Background(), name), shared.ErrValidation, name)
	}
}

func TestListUsers(t *testing.T) {
	svc, _ := seededService(t, "bob", "alice")

	list, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "bob", list[1].Username)
}

func TestUserPrincipalSnapshot(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	u := User{Username: "alice", PasswordHash: "secret-hash", Role: shared.RoleAdmin, CreatedAt: created}

	p := u.Principal(now)
	assert.Equal(t, shared.Principal{Username: "alice", Role: shared.RoleAdmin, CreatedAt: created, AuthenticatedAt: now}, p)
	assert.True(t, p.IsAdmin())
}
