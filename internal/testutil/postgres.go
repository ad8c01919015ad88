package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresDB    = "securevault_test"
	postgresUser  = "securevault"
)

// SetupPostgres runs a disposable PostgreSQL server and returns a DSN for
// the pgx driver. SECUREVAULT_TEST_POSTGRES_IMAGE overrides the image.
func SetupPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	// Postgres logs readiness once for the init server and once for the
	// real one.
	ready := wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(30 * time.Second)

	c, err := postgres.Run(ctx, image("SECUREVAULT_TEST_POSTGRES_IMAGE", postgresImage),
		postgres.WithDatabase(postgresDB),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresUser),
		testcontainers.WithWaitStrategy(ready),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	terminate(t, "postgres", c)

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres DSN: %v", err)
	}
	return dsn
}
