package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"expense-tracker/pkg/utils"
)

// Repository is the persistence contract for transactions.
type Repository interface {
	Create(ctx context.Context, t Transaction) error
	// List returns matching transactions ordered by date.
	List(ctx context.Context, q Query) ([]Transaction, error)
	// Delete removes one transaction. A non-empty owner restricts the
	// deletion to that user's transactions.
	Delete(ctx context.Context, id, owner string) error
	// DeleteMany removes every id or none of them.
	DeleteMany(ctx context.Context, ids []string) error
	DeleteByUsername(ctx context.Context, username string) (int64, error)
	Retype(ctx context.Context, from []string, to string) (int64, error)
}

// NOTE: This repository assumes the transactions table from
// migrations/001_init.sql. Category integrity is checked by the service,
// not by a foreign key, so categories can be renamed and deleted freely.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, t Transaction) error {
	const q = `INSERT INTO transactions (id, username, type, amount, date) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.Username, t.Type, t.Amount, t.Date)
	return err
}

// where renders q as a WHERE clause with positional arguments.
func where(q Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q.Usernames != nil {
		add("username = ANY($%d)", q.Usernames)
	}
	if q.Type != "" {
		add("type = $%d", q.Type)
	}
	if f := q.Filter; f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f := q.Filter; f.UpTo != nil {
		add("date <= $%d", *f.UpTo)
	}
	if f := q.Filter; f.Min != nil {
		add("amount >= $%d", *f.Min)
	}
	if f := q.Filter; f.Max != nil {
		add("amount <= $%d", *f.Max)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Transaction, error) {
	if q.Usernames != nil && len(q.Usernames) == 0 {
		return []Transaction{}, nil
	}
	clause, args := where(q)
	query := `SELECT id, username, type, amount, date FROM transactions ` + clause + ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Username, &t.Type, &t.Amount, &t.Date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepo) Delete(ctx context.Context, id, owner string) error {
	const q = `DELETE FROM transactions WHERE id = $1 AND ($2 = '' OR username = $2)`
	n, err := affected(r.db.ExecContext(ctx, q, id, owner))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteMany(ctx context.Context, ids []string) error {
	unique := distinct(ids)
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		n, err := affected(tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, unique))
		if err != nil {
			return err
		}
		if n != int64(len(unique)) {
			// Rolls back the partial delete.
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM transactions WHERE username = $1`, username))
}

func (r *PostgresRepo) Retype(ctx context.Context, from []string, to string) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	return affected(r.db.ExecContext(ctx, `UPDATE transactions SET type = $2 WHERE type = ANY($1)`, from, to))
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
