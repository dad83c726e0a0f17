package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/gatehouse/internal/platform/db"
	"github.com/odyssey-erp/gatehouse/internal/shared"
)

// DBTX is the subset of pgx used by PGStore. *pgxpool.Pool and pgx.Tx both
// satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const usersTableDDL = `CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	user_type     TEXT NOT NULL DEFAULT 'user' CHECK (user_type IN ('user', 'admin')),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsurePostgresSchema creates the users table when it does not exist.
func EnsurePostgresSchema(ctx context.Context, conn db.Beginner) error {
	return db.WithTx(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, usersTableDDL); err != nil {
			return fmt.Errorf("users: ensure schema: %w", err)
		}
		return nil
	})
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db DBTX
}

// NewPGStore constructs a PostgreSQL backed store.
func NewPGStore(conn DBTX) *PGStore {
	return &PGStore{db: conn}
}

// FindByUsername fetches a user by username.
func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT username, password_hash, user_type, created_at FROM users WHERE username = $1`
	var (
		user User
		role string
	)
	err := s.db.QueryRow(ctx, query, username).Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find %s: %w", username, err)
	}
	user.Role = roleOrDefault(role)
	return &user, nil
}

// InsertIfAbsent relies on the primary key; a conflicting insert affects no rows.
func (s *PGStore) InsertIfAbsent(ctx context.Context, user User) error {
	const query = `INSERT INTO users (username, password_hash, user_type, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username) DO NOTHING`
	tag, err := s.db.Exec(ctx, query, user.Username, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		return fmt.Errorf("users: insert %s: %w", user.Username, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrDuplicateUser
	}
	return nil
}

// SetRole updates user_type on the matching row.
func (s *PGStore) SetRole(ctx context.Context, username string, role shared.Role) error {
	const query = `UPDATE users SET user_type = $2 WHERE username = $1`
	tag, err := s.db.Exec(ctx, query, username, string(role))
	if err != nil {
		return fmt.Errorf("users: set role %s: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns all users ordered by username.
func (s *PGStore) List(ctx context.Context) ([]User, error) {
	const query = `SELECT username, password_hash, user_type, created_at FROM users ORDER BY username`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var (
			user User
			role string
		)
		if err := rows.Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		user.Role = roleOrDefault(role)
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: iterate: %w", err)
	}
	return out, nil
}

func roleOrDefault(raw string) shared.Role {
	if role, ok := shared.ParseRole(raw); ok {
		return role
	}
	return shared.RoleUser
}

var _ Store = (*PGStore)(nil)
