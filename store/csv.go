// Package store persists simulation results: CSV files for analysis
// pipelines and an embedded SQLite database for run history.
package store

import (
	"encoding/csv"
	"fmt"
	"os"

	"stadiumsim/simulator"
)

// WriteSnapshotsCSV writes the per-tick metric snapshots to path, one
// row per tick with the fixed column schema. The file is the run's
// replay log: for a fixed seed two runs produce byte-identical output.
func WriteSnapshotsCSV(path string, snapshots []simulator.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(simulator.SnapshotColumns()); err != nil {
		return err
	}
	for _, s := range snapshots {
		if err := w.Write(s.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteActionsCSV writes the controller's decision log to path.
func WriteActionsCSV(path string, actions []simulator.ControlAction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create action log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(simulator.ActionColumns()); err != nil {
		return err
	}
	for _, a := range actions {
		if err := w.Write(a.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
