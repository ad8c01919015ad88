// Package sql provides SQL database storage for persisted sessions.
//
// PostgreSQL, MySQL and SQLite are supported. Drivers are registered by
// this package; callers only pick a Dialect.
package sql

import (
	"fmt"
	"strings"

	"github.com/aloks98/securevault/store/sql/queries"
)

// Dialect represents a SQL database dialect.
type Dialect string

const (
	// PostgreSQL dialect, served by the pgx stdlib driver.
	PostgreSQL Dialect = "postgres"
	// MySQL dialect.
	MySQL Dialect = "mysql"
	// SQLite dialect, served by the pure-Go modernc.org/sqlite driver.
	SQLite Dialect = "sqlite"
)

// ParseDialect converts a configuration string into a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("sql store: unsupported dialect %q", s)
	}
}

// driverName returns the database/sql driver name for the dialect.
func (d Dialect) driverName() string {
	switch d {
	case MySQL:
		return mysqlDriver
	case SQLite:
		return sqliteDriver
	default:
		return postgresDriver
	}
}

// Default table prefix used in SQL files.
const defaultTablePrefix = "securevault_"

type dialectQueries struct {
	schema      string
	selectValue string
	upsertValue string
	deleteValue string
}

// getDialectQueries returns the queries for a dialect with the given table prefix.
func getDialectQueries(d Dialect, tablePrefix string) (*dialectQueries, error) {
	dir := string(d)
	if d != MySQL && d != SQLite {
		dir = string(PostgreSQL)
	}

	q, err := queries.Load(dir)
	if err != nil {
		return nil, err
	}

	replace := func(s string) string {
		if tablePrefix == defaultTablePrefix {
			return s
		}
		return strings.ReplaceAll(s, defaultTablePrefix, tablePrefix)
	}

	return &dialectQueries{
		schema:      replace(q.Schema),
		selectValue: replace(q.SelectValue),
		upsertValue: replace(q.UpsertValue),
		deleteValue: replace(q.DeleteValue),
	}, nil
}
