package storage

import "fmt"

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the Repository for driver. SQLite uses path, PostgreSQL uses dsn.
func Open(driver, path, dsn string) (Repository, error) {
	switch driver {
	case "", DriverSQLite:
		return NewStorage(path)
	case DriverPostgres:
		return NewPostgresStorage(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
