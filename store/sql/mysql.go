package sql

import (
	"github.com/go-sql-driver/mysql"
)

const mysqlDriver = "mysql"

// normalizeMySQLDSN enables parseTime so DATETIME columns scan into time.Time.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
