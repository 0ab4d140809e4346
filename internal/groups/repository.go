package groups

import (
	"context"
	"database/sql"
	"errors"

	"expense-tracker/pkg/utils"
)

// Repository is the persistence contract for groups.
type Repository interface {
	Create(ctx context.Context, g Group) error
	ByName(ctx context.Context, name string) (Group, error)
	// GroupOf returns the group the email belongs to.
	GroupOf(ctx context.Context, email string) (Group, error)
	List(ctx context.Context) ([]Group, error)
	// GroupedEmails returns the subset of emails already in some group.
	GroupedEmails(ctx context.Context, emails []string) ([]string, error)
	AddMembers(ctx context.Context, name string, members []Member) (Group, error)
	RemoveMembers(ctx context.Context, name string, emails []string) (Group, error)
	Delete(ctx context.Context, name string) error
}

// NOTE: This repository assumes the groups and group_members tables from
// migrations/001_init.sql. group_members.email is UNIQUE, which enforces
// single-group membership, and cascades from both groups and users.

const (
	groupsPrimaryKey      = "groups_pkey"
	membersEmailUniqueKey = "group_members_email_key"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func mapConflict(err error) error {
	constraint, dup := utils.UniqueViolation(err)
	if !dup {
		return err
	}
	switch constraint {
	case groupsPrimaryKey:
		return ErrAlreadyExists
	case membersEmailUniqueKey:
		return ErrMemberGrouped
	}
	return err
}

func insertMembers(ctx context.Context, tx *sql.Tx, name string, members []Member) error {
	const q = `INSERT INTO group_members (group_name, email) VALUES ($1, $2)`
	for _, m := range members {
		if _, err := tx.ExecContext(ctx, q, name, m.Email); err != nil {
			return mapConflict(err)
		}
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, g Group) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `INSERT INTO groups (name, created_at) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, q, g.Name, g.CreatedAt); err != nil {
			return mapConflict(err)
		}
		return insertMembers(ctx, tx, g.Name, g.Members)
	})
}

const selectGroups = `
SELECT g.name, g.created_at, m.email, u.username
FROM groups g
LEFT JOIN group_members m ON m.group_name = g.name
LEFT JOIN users u ON u.email = m.email
`

const orderGroups = `
ORDER BY g.created_at, g.name, m.id
`

type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryGroups folds the joined rows into groups, preserving order.
func queryGroups(ctx context.Context, q rowQuerier, query string, args ...any) ([]Group, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Group{}
	for rows.Next() {
		var (
			g        Group
			email    sql.NullString
			username sql.NullString
		)
		if err := rows.Scan(&g.Name, &g.CreatedAt, &email, &username); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].Name != g.Name {
			g.Members = []Member{}
			out = append(out, g)
		}
		if email.Valid {
			last := &out[len(out)-1]
			last.Members = append(last.Members, Member{Email: email.String, Username: username.String})
		}
	}
	return out, rows.Err()
}

func byName(ctx context.Context, q rowQuerier, name string) (Group, error) {
	gs, err := queryGroups(ctx, q, selectGroups+`WHERE g.name = $1`+orderGroups, name)
	if err != nil {
		return Group{}, err
	}
	if len(gs) == 0 {
		return Group{}, ErrNotFound
	}
	return gs[0], nil
}

func (r *PostgresRepo) ByName(ctx context.Context, name string) (Group, error) {
	return byName(ctx, r.db, name)
}

func (r *PostgresRepo) GroupOf(ctx context.Context, email string) (Group, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT group_name FROM group_members WHERE email = $1`, email).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, err
	}
	return r.ByName(ctx, name)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Group, error) {
	return queryGroups(ctx, r.db, selectGroups+orderGroups)
}

func (r *PostgresRepo) GroupedEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return []string{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT email FROM group_members WHERE email = ANY($1) ORDER BY email`, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) AddMembers(ctx context.Context, name string, members []Member) (Group, error) {
	var g Group
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		// Lock the group row so concurrent membership edits serialize.
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT name FROM groups WHERE name = $1 FOR UPDATE`, name).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := insertMembers(ctx, tx, name, members); err != nil {
			return err
		}
		g, err = byName(ctx, tx, name)
		return err
	})
	return g, err
}

func (r *PostgresRepo) RemoveMembers(ctx context.Context, name string, emails []string) (Group, error) {
	var g Group
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT name FROM groups WHERE name = $1 FOR UPDATE`, name).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		const q = `DELETE FROM group_members WHERE group_name = $1 AND email = ANY($2)`
		if _, err := tx.ExecContext(ctx, q, name, emails); err != nil {
			return err
		}
		g, err = byName(ctx, tx, name)
		return err
	})
	return g, err
}

func (r *PostgresRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE name = $1`, name)
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
