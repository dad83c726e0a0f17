package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gatehouse/internal/shared"
)

var userColumns = []string{"username", "password_hash", "user_type", "created_at"}

func newMockStore(t *testing.T) (*PGStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return NewPGStore(mock), mock
}

func TestPGStoreFindByUsername(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *User
		wantErr   error
		errMsg    string
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT username, password_hash, user_type, created_at FROM users WHERE username`).
					WithArgs("alice").
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow("alice", "hash", "admin", created))
			},
			want: &User{Username: "alice", PasswordHash: "hash", Role: shared.RoleAdmin, CreatedAt: created},
		},
		{
			name: "unknown role falls back to user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE username`).
					WithArgs("alice").
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow("alice", "hash", "", created))
			},
			want: &User{Username: "alice", PasswordHash: "hash", Role: shared.RoleUser, CreatedAt: created},
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE username`).
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: shared.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE username`).
					WithArgs("alice").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setupMock(mock)

			username := "alice"
			if tt.wantErr != nil {
				username = "ghost"
			}
			got, err := store.FindByUsername(context.Background(), username)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, shared.ErrNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPGStoreInsertIfAbsent(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	user := User{Username: "alice", PasswordHash: "hash", Role: shared.RoleUser, CreatedAt: created}

	t.Run("inserted", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("alice", "hash", "user", created).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.InsertIfAbsent(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`ON CONFLICT \(username\) DO NOTHING`).
			WithArgs("alice", "hash", "user", created).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		assert.ErrorIs(t, store.InsertIfAbsent(context.Background(), user), shared.ErrDuplicateUser)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("alice", "hash", "user", created).
			WillReturnError(errors.New("disk full"))

		err := store.InsertIfAbsent(context.Background(), user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrDuplicateUser)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGStoreSetRole(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE users SET user_type`).
			WithArgs("alice", "admin").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, store.SetRole(context.Background(), "alice", shared.RoleAdmin))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE users SET user_type`).
			WithArgs("ghost", "user").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, store.SetRole(context.Background(), "ghost", shared.RoleUser), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGStoreList(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store, mock := newMockStore(t)
	mock.ExpectQuery(`ORDER BY username`).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("alice", "h1", "user", created).
			AddRow("root", "h2", "admin", created))

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, shared.RoleAdmin, got[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsurePostgresSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCommit()

	require.NoError(t, EnsurePostgresSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsurePostgresSchemaRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = EnsurePostgresSchema(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
