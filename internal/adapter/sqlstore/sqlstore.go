// Package sqlstore implements the entry and profile repositories on a SQL
// database. PostgreSQL and SQLite are supported.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"bodytrack/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps a *sqlx.DB and implements domain repository interfaces.
type DB struct {
	sql    *sqlx.DB
	driver string
}

var _ domain.EntryRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)

// Open connects to the database, pings, and runs migrations. For SQLite the
// dsn is a file path whose directory is created if missing.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	s, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// A single connection serialises writers and keeps per-connection pragmas.
		s.SetMaxOpenConns(1)
	} else {
		s.SetMaxOpenConns(10)
		s.SetMaxIdleConns(5)
		s.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, driver: driver}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := postgresSchema
	if d.driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	"CREATE TABLE IF NOT EXISTS entries (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL, recorded_at TIMESTAMPTZ NOT NULL, weight_kg DOUBLE PRECISION NOT NULL, fat_pct DOUBLE PRECISION, fat_weight_kg DOUBLE PRECISION, created_at TIMESTAMPTZ NOT NULL DEFAULT now());",
	"CREATE INDEX IF NOT EXISTS idx_entries_user_recorded_at ON entries(user_id, recorded_at);",
	"CREATE TABLE IF NOT EXISTS profiles (user_id BIGINT PRIMARY KEY, height_cm DOUBLE PRECISION, goal_weight_kg DOUBLE PRECISION, goal_fat_pct DOUBLE PRECISION, created_at TIMESTAMPTZ NOT NULL DEFAULT now());",
}

var sqliteSchema = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA busy_timeout = 5000;",
	"CREATE TABLE IF NOT EXISTS entries (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL, recorded_at TIMESTAMP NOT NULL, weight_kg REAL NOT NULL, fat_pct REAL, fat_weight_kg REAL, created_at TIMESTAMP NOT NULL);",
	"CREATE INDEX IF NOT EXISTS idx_entries_user_recorded_at ON entries(user_id, recorded_at);",
	"CREATE TABLE IF NOT EXISTS profiles (user_id INTEGER PRIMARY KEY, height_cm REAL, goal_weight_kg REAL, goal_fat_pct REAL, created_at TIMESTAMP NOT NULL);",
}
