package users

import (
	"context"
	"database/sql"
	"errors"

	"expense-tracker/pkg/utils"
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	Create(ctx context.Context, u User) error
	ByEmail(ctx context.Context, email string) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	ByRefreshToken(ctx context.Context, token string) (User, error)
	SetRefreshToken(ctx context.Context, username, token string) error
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, email string) error
}

// NOTE: This repository assumes the users table from migrations/001_init.sql,
// with UNIQUE constraints on username and email.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (username, email, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.db.ExecContext(ctx, q, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if _, dup := utils.UniqueViolation(err); dup {
		return ErrAlreadyExists
	}
	return err
}

const selectUser = `
SELECT username, email, password_hash, role, COALESCE(refresh_token, ''), created_at
FROM users
`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.Username, &u.Email, &u.PasswordHash, &role, &u.RefreshToken, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = roleOf(role)
	return u, nil
}

func (r *PostgresRepo) ByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE email = $1`, email))
}

func (r *PostgresRepo) ByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE username = $1`, username))
}

func (r *PostgresRepo) ByRefreshToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE refresh_token = $1`, token))
}

func (r *PostgresRepo) SetRefreshToken(ctx context.Context, username, token string) error {
	const q = `UPDATE users SET refresh_token = NULLIF($2, '') WHERE username = $1`
	res, err := r.db.ExecContext(ctx, q, username, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
