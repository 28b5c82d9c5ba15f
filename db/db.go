// ABOUTME: Database connection management and initialization
// ABOUTME: Opens the sqlite or postgres store and applies embedded goose migrations
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects the backend. Path is used for sqlite, URL for postgres.
type Options struct {
	Driver string
	Path   string
	URL    string
	// SkipMigrations leaves the schema as found; the migrate command uses it.
	SkipMigrations bool
}

// Store is the outreach record store. It is safe for concurrent use.
type Store struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// Open connects to the configured backend and brings the schema up to date.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		conn *sqlx.DB
		err  error
	)

	switch driver {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, errors.New("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		conn, err = sqlx.ConnectContext(ctx, "sqlite3", opts.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// Single writer avoids "database is locked" under WAL.
		conn.SetMaxOpenConns(1)
	case DriverPostgres:
		if opts.URL == "" {
			return nil, errors.New("postgres url is required")
		}
		conn, err = sqlx.ConnectContext(ctx, "pgx", opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	s := &Store{db: conn, driver: driver, now: func() time.Time { return time.Now().UTC() }}
	if opts.SkipMigrations {
		return s, nil
	}
	if err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for tooling such as migrations and health checks.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Driver reports which backend the store is using.
func (s *Store) Driver() string {
	return s.driver
}

// SetClock overrides the timestamp source. Tests use it to control time.
func (s *Store) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies all pending migrations for the active dialect.
func (s *Store) Migrate(ctx context.Context) error {
	dialect, dir := s.migrationTarget()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db.DB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown(ctx context.Context) error {
	dialect, dir := s.migrationTarget()
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.DownContext(ctx, s.db.DB, dir)
}

// MigrationVersion returns the current schema version.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	dialect, _ := s.migrationTarget()
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, s.db.DB)
}

func (s *Store) migrationTarget() (string, string) {
	if s.driver == DriverPostgres {
		return "postgres", "migrations/postgres"
	}
	return "sqlite3", "migrations/sqlite"
}

// q rewrites ? placeholders for the active driver.
func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// isUniqueViolation reports whether err is a unique constraint failure on either backend.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// likePattern builds a case-insensitive substring pattern.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// conditions accumulates WHERE clauses and their arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}
