package sql

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	// SQLite driver
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// SQLiteDSN builds a DSN for a database file, creating its directory.
func SQLiteDSN(path string) (string, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}

// configureSQLite limits the pool to one connection so an in-memory
// database is shared by every query.
func configureSQLite(db *sql.DB, dsn string) {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
}
