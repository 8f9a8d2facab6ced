package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver(DriverSqlite, sqlx.QUESTION)
}

// Open connects to Postgres through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSqlite opens a SQLite database file. ":memory:" is pinned to a single
// connection so every query sees the same in-memory database.
func OpenSqlite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", path, err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}

// Driver names accepted by OpenDriver.
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "pgx"
)

// OpenDriver dispatches to Open or OpenSqlite by driver name.
func OpenDriver(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSqlite:
		return OpenSqlite(dsn)
	case DriverPostgres:
		return Open(dsn)
	default:
		return nil, fmt.Errorf("openDB: unsupported driver %q", driver)
	}
}

// Wrap exposes db through sqlx with the bindvar style of driver.
func Wrap(db *sql.DB, driver string) *sqlx.DB {
	return sqlx.NewDb(db, driver)
}
