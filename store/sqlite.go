package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"stadiumsim/simulator"
)

// DB wraps the run-history database. Each saved run gets a UUID and
// stores its config, summary, per-tick snapshots and control actions.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error { return d.db.Close() }

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			seed INTEGER NOT NULL,
			population INTEGER NOT NULL,
			config_json TEXT NOT NULL,
			summary_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT NOT NULL,
			time REAL NOT NULL,
			snapshot_json TEXT NOT NULL,
			PRIMARY KEY (run_id, time),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE TABLE IF NOT EXISTS control_actions (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			time REAL NOT NULL,
			target TEXT NOT NULL,
			severity TEXT NOT NULL,
			risk_score REAL NOT NULL,
			queue_length INTEGER NOT NULL,
			wait_time REAL NOT NULL,
			capacities_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON snapshots(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_run_id ON control_actions(run_id);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun persists one finished run and returns its generated ID.
func (d *DB) SaveRun(cfg *simulator.SimConfig, results *simulator.Results) (string, error) {
	runID := uuid.NewString()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	summaryJSON, err := json.Marshal(results.Summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, seed, population, config_json, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), cfg.RandomSeed, cfg.Population,
		string(cfgJSON), string(summaryJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, s := range results.Snapshots {
		snapJSON, err := json.Marshal(s)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(
			`INSERT INTO snapshots (run_id, time, snapshot_json) VALUES (?, ?, ?)`,
			runID, s.Time, string(snapJSON),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}

	for i, a := range results.Actions {
		capsJSON, err := json.Marshal(a.Resulting)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(
			`INSERT INTO control_actions
			 (run_id, seq, time, target, severity, risk_score, queue_length, wait_time, capacities_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, a.Time, a.Target.String(), a.Severity.String(),
			a.RiskScore, a.QueueLength, a.WaitTime, string(capsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert control action: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	RunID      string            `json:"runId"`
	CreatedAt  time.Time         `json:"createdAt"`
	Seed       int64             `json:"seed"`
	Population int               `json:"population"`
	Summary    simulator.Summary `json:"summary"`
}

// ListRuns returns saved runs, newest first.
func (d *DB) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := d.db.Query(
		`SELECT run_id, created_at, seed, population, summary_json
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var summaryJSON string
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Seed, &r.Population, &summaryJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadSnapshots returns the per-tick snapshots of one saved run in
// time order.
func (d *DB) LoadSnapshots(runID string) ([]simulator.Snapshot, error) {
	rows, err := d.db.Query(
		`SELECT snapshot_json FROM snapshots WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []simulator.Snapshot
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var s simulator.Snapshot
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
