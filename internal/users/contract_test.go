package users

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// runStoreContract exercises the behaviour every Store backend must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	alice := User{Username: "alice", PasswordHash: "hash-a", Role: shared.RoleUser, CreatedAt: created}

	t.Run("find missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("insert then find", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.InsertIfAbsent(ctx, alice))

		got, err := store.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "hash-a", got.PasswordHash)
		assert.Equal(t, shared.RoleUser, got.Role)
		assert.True(t, created.Equal(got.CreatedAt), "created at %v", got.CreatedAt)
	})

	t.Run("duplicate leaves original untouched", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.InsertIfAbsent(ctx, alice))

		imposter := alice
		imposter.PasswordHash = "hash-b"
		imposter.Role = shared.RoleAdmin
		assert.ErrorIs(t, store.InsertIfAbsent(ctx, imposter), shared.ErrDuplicateUser)

		got, err := store.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "hash-a", got.PasswordHash)
		assert.Equal(t, shared.RoleUser, got.Role)
	})

	t.Run("concurrent inserts have one winner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const workers = 8
		var (
			wg    sync.WaitGroup
			wins  atomic.Int32
			dupes atomic.Int32
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.InsertIfAbsent(ctx, alice)
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, shared.ErrDuplicateUser):
					dupes.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(workers-1), dupes.Load())
	})

	t.Run("set role", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.InsertIfAbsent(ctx, alice))

		require.NoError(t, store.SetRole(ctx, "alice", shared.RoleAdmin))
		got, err := store.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, shared.RoleAdmin, got.Role)

		require.NoError(t, store.SetRole(ctx, "alice", shared.RoleUser))
		got, err = store.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, shared.RoleUser, got.Role)

		assert.ErrorIs(t, store.SetRole(ctx, "ghost", shared.RoleAdmin), shared.ErrNotFound)
	})

	t.Run("list is ordered", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, name := range []string{"carol", "alice", "bob"} {
			u := alice
			u.Username = name
			require.NoError(t, store.InsertIfAbsent(ctx, u))
		}

		got, err := store.List(ctx)
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, u := range got {
			names = append(names, u.Username)
		}
		assert.Equal(t, []string{"alice", "bob", "carol"}, names)
	})
}
