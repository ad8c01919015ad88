package sql

import (
	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresDriver = "pgx"
