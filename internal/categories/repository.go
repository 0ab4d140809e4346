package categories

import (
	"context"
	"database/sql"
	"errors"

	"expense-tracker/pkg/utils"
)

// Repository is the persistence contract for categories.
type Repository interface {
	Create(ctx context.Context, c Category) error
	ByType(ctx context.Context, typ string) (Category, error)
	// List returns every category, oldest first.
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, currentType string, c Category) (Category, error)
	Delete(ctx context.Context, types []string) (int64, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func mapConflict(err error) error {
	if _, dup := utils.UniqueViolation(err); dup {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) Create(ctx context.Context, c Category) error {
	const q = `INSERT INTO categories (type, color, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, c.Type, c.Color, c.CreatedAt)
	return mapConflict(err)
}

func (r *PostgresRepo) ByType(ctx context.Context, typ string) (Category, error) {
	const q = `SELECT type, color, created_at FROM categories WHERE type = $1`
	var c Category
	if err := r.db.QueryRowContext(ctx, q, typ).Scan(&c.Type, &c.Color, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, color, created_at FROM categories ORDER BY created_at, type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Type, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, currentType string, c Category) (Category, error) {
	const q = `
UPDATE categories SET type = $2, color = $3
WHERE type = $1
RETURNING type, color, created_at
`
	var out Category
	err := r.db.QueryRowContext(ctx, q, currentType, c.Type, c.Color).Scan(&out.Type, &out.Color, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, mapConflict(err)
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, types []string) (int64, error) {
	if len(types) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE type = ANY($1)`, types)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
