package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends to audit_events (see migrations/001_init.sql).
// There are no update or delete methods.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, username, actor, ip_address, message, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, string(e.Type), e.Username, e.Actor, e.IPAddress, e.Message, e.CreatedAt)
	return err
}
