package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stadiumsim/simulator"
)

func sampleResults() (*simulator.SimConfig, *simulator.Results) {
	cfg := simulator.SmallConfig()
	return cfg, &simulator.Results{
		Snapshots: []simulator.Snapshot{
			{Time: 1, FansArrived: 10, FansInStadium: 2, ParkingFree: 398},
			{Time: 2, FansArrived: 25, FansInStadium: 9, ParkingFree: 390},
		},
		Actions: []simulator.ControlAction{
			{
				Time:        120,
				Target:      simulator.TargetEntry,
				Severity:    simulator.SeverityModerate,
				RiskScore:   0.55,
				QueueLength: 800,
				WaitTime:    4.2,
				Resulting:   simulator.Capacities{Security: 9, Turnstiles: 4, Vendors: 17, ExitGates: 4},
			},
		},
		Summary: simulator.Summary{Arrived: 25, Completed: 9, Exited: 0, AbandonedInFlight: 25},
	}
}

func TestWriteSnapshotsCSV(t *testing.T) {
	_, results := sampleResults()
	path := filepath.Join(t.TempDir(), "snapshots.csv")

	require.NoError(t, WriteSnapshotsCSV(path, results.Snapshots))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 ticks
	require.Equal(t, simulator.SnapshotColumns(), rows[0])
	require.Equal(t, "1.0", rows[1][0])
	require.Equal(t, "10", rows[1][1])
}

func TestWriteActionsCSV(t *testing.T) {
	_, results := sampleResults()
	path := filepath.Join(t.TempDir(), "actions.csv")

	require.NoError(t, WriteActionsCSV(path, results.Actions))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, simulator.ActionColumns(), rows[0])
	require.Equal(t, "ENTRY", rows[1][1])
	require.Equal(t, "MODERATE", rows[1][2])
}

func TestSQLiteRoundTrip(t *testing.T) {
	cfg, results := sampleResults()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	runID, err := db.SaveRun(cfg, results)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, runID, runs[0].RunID)
	require.Equal(t, cfg.Population, runs[0].Population)
	require.Equal(t, results.Summary, runs[0].Summary)

	snaps, err := db.LoadSnapshots(runID)
	require.NoError(t, err)
	require.Equal(t, results.Snapshots, snaps)
}

func TestSQLiteMultipleRuns(t *testing.T) {
	cfg, results := sampleResults()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	id1, err := db.SaveRun(cfg, results)
	require.NoError(t, err)
	id2, err := db.SaveRun(cfg, results)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}
