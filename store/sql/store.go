package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aloks98/securevault/store"
)

// DefaultNamespace is used when Config.Namespace is empty.
const DefaultNamespace = "default"

// Store implements store.Store using a SQL database. Each row is one key
// of one namespace.
type Store struct {
	db        *sql.DB
	owned     bool
	dialect   Dialect
	namespace string
	queries   *dialectQueries
	now       func() time.Time
}

// Config holds SQL store configuration.
type Config struct {
	// Dialect specifies the database type (postgres, mysql, sqlite).
	Dialect Dialect

	// DB is an existing database connection.
	// If provided, DSN is ignored and Close leaves it open.
	DB *sql.DB

	// DSN is the data source name for connecting to the database.
	DSN string

	// TablePrefix is the prefix for all table names.
	// Defaults to "securevault_" if empty.
	TablePrefix string

	// Namespace separates sessions sharing one table, such as CLI profiles.
	Namespace string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration
}

// New creates a new SQL store.
func New(cfg *Config) (*Store, error) {
	tablePrefix := cfg.TablePrefix
	if tablePrefix == "" {
		tablePrefix = defaultTablePrefix
	}
	q, err := getDialectQueries(cfg.Dialect, tablePrefix)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:        cfg.DB,
		dialect:   cfg.Dialect,
		namespace: cfg.Namespace,
		queries:   q,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.namespace == "" {
		s.namespace = DefaultNamespace
	}

	if s.db == nil {
		dsn := cfg.DSN
		if cfg.Dialect == MySQL && dsn != "" {
			if dsn, err = normalizeMySQLDSN(dsn); err != nil {
				return nil, fmt.Errorf("sql store: %w", err)
			}
		}

		db, err := sql.Open(cfg.Dialect.driverName(), dsn)
		if err != nil {
			return nil, err
		}
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
		if cfg.Dialect == SQLite {
			configureSQLite(db, dsn)
		}
		s.db = db
		s.owned = true
	}

	return s, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Namespace returns the namespace rows are written under.
func (s *Store) Namespace() string {
	return s.namespace
}

// Close closes the database connection if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the database schema.
func (s *Store) Migrate(ctx context.Context) error {
	// Split schema by semicolon for multiple statements
	for _, stmt := range strings.Split(s.queries.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.queries.selectValue, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.queries.upsertValue, s.namespace, key, value, s.now())
	return err
}

// Delete implements store.Store. All keys are removed in one transaction.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, s.queries.deleteValue, s.namespace, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var _ store.Store = (*Store)(nil)
