package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InitSchema creates the tables used by the service. The DDL is portable
// between SQLite and Postgres.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPortsQuery := `
	CREATE TABLE IF NOT EXISTS ports (
		name TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createCompaniesQuery := `
	CREATE TABLE IF NOT EXISTS companies (
		name TEXT PRIMARY KEY,
		seq INTEGER NOT NULL
	);
	`

	createVesselsQuery := `
	CREATE TABLE IF NOT EXISTS vessels (
		name TEXT PRIMARY KEY,
		company TEXT NOT NULL REFERENCES companies(name),
		seq INTEGER NOT NULL,
		location TEXT NOT NULL,
		available_at DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION NOT NULL,
		capacities_json TEXT NOT NULL,
		loading_rates_json TEXT NOT NULL,
		loading_consumption DOUBLE PRECISION NOT NULL,
		unloading_consumption DOUBLE PRECISION NOT NULL,
		laden_consumption DOUBLE PRECISION NOT NULL
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_nm DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createSettlementsQuery := `
	CREATE TABLE IF NOT EXISTS settlements (
		round_id TEXT NOT NULL,
		trade_id TEXT NOT NULL,
		vessel TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		payment TEXT NOT NULL,
		settled_at TEXT NOT NULL,
		PRIMARY KEY (round_id, trade_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	statements := []string{
		createPortsQuery,
		createCompaniesQuery,
		createVesselsQuery,
		createDistanceCacheQuery,
		createSettlementsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
