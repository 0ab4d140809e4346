package utils

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns != 25 || c.MaxIdleConns != 25 {
		t.Fatalf("unexpected pool sizes: %+v", c)
	}
	if c.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", c.PingTimeout)
	}

	c = PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}.withDefaults()
	if c.MaxOpenConns != 3 || c.MaxIdleConns != 3 || c.PingTimeout != time.Second {
		t.Fatalf("explicit values must be kept: %+v", c)
	}
}

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	if name, ok := UniqueViolation(fmt.Errorf("insert: %w", dup)); !ok || name != "users_email_key" {
		t.Fatalf("expected wrapped violation, got %q %v", name, ok)
	}
	if _, ok := UniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if _, ok := UniqueViolation(errors.New("boom")); ok {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_more.sql": {Data: []byte("ALTER TABLE t ADD COLUMN c TEXT;")},
		"001_init.sql": {Data: []byte("CREATE TABLE t (id INT);")},
		"README.md":    {Data: []byte("ignored")},
	}
	ms, err := LoadMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ms) != 2 || ms[0].Version != "001_init" || ms[1].Version != "002_more" {
		t.Fatalf("unexpected migrations %+v", ms)
	}
	if ms[0].SQL != "CREATE TABLE t (id INT);" {
		t.Fatalf("unexpected sql %q", ms[0].SQL)
	}
}
