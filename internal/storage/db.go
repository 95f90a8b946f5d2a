package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if needed) the run history database at path.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id                TEXT PRIMARY KEY,
		started_at        INTEGER NOT NULL,
		finished_at       INTEGER,
		directory         TEXT,
		error_count       INTEGER NOT NULL DEFAULT 0,
		install_invoked   INTEGER NOT NULL DEFAULT 0,
		install_exit_code INTEGER,
		patch_status      TEXT,
		report_path       TEXT,
		dry_run           INTEGER NOT NULL DEFAULT 0,
		details           TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := db.Exec(schema)
	return err
}
