package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID              string         `yaml:"id"`
	StartedAt       time.Time      `yaml:"started_at"`
	FinishedAt      time.Time      `yaml:"finished_at"`
	Directory       string         `yaml:"directory"`
	ErrorCount      int            `yaml:"error_count"`
	Categories      map[string]int `yaml:"categories,omitempty"`
	Installed       []string       `yaml:"installed,omitempty"`
	InstallInvoked  bool           `yaml:"install_invoked"`
	InstallExitCode int            `yaml:"install_exit_code"`
	PatchStatus     string         `yaml:"patch_status,omitempty"`
	Patched         []string       `yaml:"patched,omitempty"`
	ReportPath      string         `yaml:"report_path,omitempty"`
	DryRun          bool           `yaml:"dry_run"`
}

// details holds the list-valued fields, stored as JSON.
type details struct {
	Categories map[string]int `json:"categories,omitempty"`
	Installed  []string       `json:"installed,omitempty"`
	Patched    []string       `json:"patched,omitempty"`
}

func SaveRun(db *sql.DB, run Run) error {
	detailsJSON, err := json.Marshal(details{
		Categories: run.Categories,
		Installed:  run.Installed,
		Patched:    run.Patched,
	})
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	query := `INSERT OR REPLACE INTO runs
		(id, started_at, finished_at, directory, error_count, install_invoked, install_exit_code, patch_status, report_path, dry_run, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.Exec(query,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Directory,
		run.ErrorCount,
		run.InstallInvoked,
		run.InstallExitCode,
		run.PatchStatus,
		run.ReportPath,
		run.DryRun,
		string(detailsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	query := `SELECT id, started_at, COALESCE(finished_at, 0), COALESCE(directory, ''), error_count,
			  install_invoked, COALESCE(install_exit_code, 0), COALESCE(patch_status, ''),
			  COALESCE(report_path, ''), dry_run, COALESCE(details, '{}')
			  FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished int64
			detailsJSON       string
			invoked, dryRun   bool
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Directory, &run.ErrorCount,
			&invoked, &run.InstallExitCode, &run.PatchStatus, &run.ReportPath, &dryRun, &detailsJSON); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		run.InstallInvoked = invoked
		run.DryRun = dryRun

		var d details
		if err := json.Unmarshal([]byte(detailsJSON), &d); err == nil {
			run.Categories = d.Categories
			run.Installed = d.Installed
			run.Patched = d.Patched
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
