package sql

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aloks98/securevault/store"
)

func newSQLiteStore(t *testing.T, namespace string) *Store {
	t.Helper()
	s, err := New(&Config{
		Dialect:   SQLite,
		DSN:       fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		Namespace: namespace,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"postgres", PostgreSQL, false},
		{"PostgreSQL", PostgreSQL, false},
		{"mysql", MySQL, false},
		{"sqlite3", SQLite, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		expected string
	}{
		{PostgreSQL, "pgx"},
		{MySQL, "mysql"},
		{SQLite, "sqlite"},
		{Dialect("unknown"), "pgx"},
	}
	for _, tt := range tests {
		if got := tt.dialect.driverName(); got != tt.expected {
			t.Errorf("driverName(%v) = %q, want %q", tt.dialect, got, tt.expected)
		}
	}
}

func TestGetDialectQueries_TablePrefix(t *testing.T) {
	q, err := getDialectQueries(PostgreSQL, "app_")
	if err != nil {
		t.Fatalf("getDialectQueries() error = %v", err)
	}
	for _, s := range []string{q.schema, q.selectValue, q.upsertValue, q.deleteValue} {
		if strings.Contains(s, "securevault_") || !strings.Contains(s, "app_credentials") {
			t.Errorf("query not rewritten: %q", s)
		}
	}

	mq, _ := getDialectQueries(MySQL, defaultTablePrefix)
	if !strings.Contains(mq.upsertValue, "ON DUPLICATE KEY UPDATE") {
		t.Errorf("MySQL upsert = %q", mq.upsertValue)
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("user:pass@tcp(localhost:3306)/app")
	if err != nil {
		t.Fatalf("normalizeMySQLDSN() error = %v", err)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN = %q, want parseTime=true", dsn)
	}
}

func TestSQLiteDSN(t *testing.T) {
	if dsn, _ := SQLiteDSN(":memory:"); dsn != ":memory:" {
		t.Errorf("SQLiteDSN(:memory:) = %q", dsn)
	}

	path := filepath.Join(t.TempDir(), "nested", "session.db")
	dsn, err := SQLiteDSN(path)
	if err != nil {
		t.Fatalf("SQLiteDSN() error = %v", err)
	}
	if !strings.HasPrefix(dsn, "file:"+path) {
		t.Errorf("SQLiteDSN() = %q", dsn)
	}
}

func TestStore_SQLite_CRUD(t *testing.T) {
	s := newSQLiteStore(t, "")
	ctx := context.Background()

	if s.Namespace() != DefaultNamespace {
		t.Errorf("Namespace() = %q", s.Namespace())
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if _, ok, err := s.Get(ctx, store.KeyToken); err != nil || ok {
		t.Fatalf("Get() on empty = %v, %v", ok, err)
	}

	if err := s.Set(ctx, store.KeyToken, "mock-jwt-token-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, store.KeyToken, "mock-jwt-token-2"); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}
	v, ok, err := s.Get(ctx, store.KeyToken)
	if err != nil || !ok || v != "mock-jwt-token-2" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	if err := s.Delete(ctx, store.KeyToken, store.KeyUser); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, store.KeyToken); ok {
		t.Error("key should be gone after Delete")
	}
	if err := s.Delete(ctx); err != nil {
		t.Errorf("Delete() with no keys error = %v", err)
	}
}

func TestStore_SQLite_Namespaces(t *testing.T) {
	a := newSQLiteStore(t, "work")
	b, err := New(&Config{Dialect: SQLite, DB: a.DB(), Namespace: "home"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	_ = a.Set(ctx, store.KeyToken, "work-token")
	if _, ok, _ := b.Get(ctx, store.KeyToken); ok {
		t.Error("namespaces should not share keys")
	}

	// b does not own the shared handle.
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Ping(ctx); err != nil {
		t.Errorf("Ping() after closing borrowed store error = %v", err)
	}
}

func TestStore_SQLite_MigrateIdempotent(t *testing.T) {
	s := newSQLiteStore(t, "")
	if err := s.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestStore_SQLite_Credentials(t *testing.T) {
	s := newSQLiteStore(t, "")
	c := store.NewCredentials(s)
	ctx := context.Background()

	if err := c.SaveToken(ctx, "mock-jwt-token-2"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	token, err := c.Token(ctx)
	if err != nil || token != "mock-jwt-token-2" {
		t.Errorf("Token() = %q, %v", token, err)
	}
}

func TestStore_SQLite_ConcurrentSet(t *testing.T) {
	s := newSQLiteStore(t, "")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Set(ctx, fmt.Sprintf("k%d", i%4), fmt.Sprint(i)); err != nil {
				t.Errorf("Set() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		if _, ok, _ := s.Get(ctx, fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("k%d missing", i)
		}
	}
}
