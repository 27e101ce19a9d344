package handle

import (
	"github.com/asaidimu/sqlhandle/pkg/config"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// beginStatement returns the statement that opens a transaction. The
// embedded engines only accept the BEGIN form.
func beginStatement(driver string) string {
	switch driver {
	case config.DriverSQLite, config.DriverDuckDB:
		return "BEGIN TRANSACTION;"
	default:
		return "START TRANSACTION;"
	}
}
