// Package migrations versions the history database schema. The applied
// version lives in SQLite's user_version pragma.
package migrations

import (
	"database/sql"
	"fmt"
)

// Step moves the schema from Version-1 to Version
type Step struct {
	Version int
	Name    string
	SQL     string
}

// Steps lists every schema change in order. Append only.
var Steps = []Step{
	{
		Version: 1,
		Name:    "transfers table",
		SQL: `
			CREATE TABLE transfers (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				at_ms       INTEGER NOT NULL,
				direction   TEXT    NOT NULL,
				server      TEXT    NOT NULL,
				category    TEXT    NOT NULL,
				name        TEXT    NOT NULL,
				local_path  TEXT    NOT NULL DEFAULT '',
				bytes       INTEGER NOT NULL DEFAULT 0,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				error       TEXT    NOT NULL DEFAULT ''
			);
			CREATE INDEX idx_transfers_at ON transfers(at_ms DESC);
		`,
	},
	{
		Version: 2,
		Name:    "per-server listing",
		SQL:     `CREATE INDEX idx_transfers_server_at ON transfers(server, at_ms DESC);`,
	},
}

// Latest is the version a fully migrated database reports
func Latest() int {
	return Steps[len(Steps)-1].Version
}

// Version reads the schema version of db; 0 for a new database
func Version(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Run applies the steps db has not seen yet, each in its own
// transaction together with the version bump
func Run(db *sql.DB) error {
	current, err := Version(db)
	if err != nil {
		return err
	}
	if current > Latest() {
		return fmt.Errorf("history database is version %d, newer than this build (%d)", current, Latest())
	}

	for _, step := range Steps[current:] {
		if err := apply(db, step); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}
	}
	return nil
}

func apply(db *sql.DB, step Step) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(step.SQL); err != nil {
		return err
	}
	// pragmas take no bind parameters
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", step.Version)); err != nil {
		return err
	}
	return tx.Commit()
}
