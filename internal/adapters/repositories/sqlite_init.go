package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createScenariosQuery := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		saved_at TEXT NOT NULL,
		data TEXT NOT NULL
	);
	`

	createStateQuery := `
	CREATE TABLE IF NOT EXISTS kv_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS request_history (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		error TEXT NOT NULL
	);
	`

	createGeometryCacheQuery := `
	CREATE TABLE IF NOT EXISTS geometry_cache (
		request_key TEXT PRIMARY KEY,
		geometry TEXT NOT NULL,
		distance_meters REAL NOT NULL,
		duration_seconds REAL NOT NULL
	);
	`

	createScenarioIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_scenarios_saved_at
	ON scenarios(saved_at DESC);
	`

	statements := []string{
		createScenariosQuery,
		createStateQuery,
		createHistoryQuery,
		createGeometryCacheQuery,
		createScenarioIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
