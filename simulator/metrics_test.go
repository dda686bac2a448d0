package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCollector(population int) (*Collector, *Counters) {
	counters := &Counters{}
	c := NewCollector(1.0, population,
		NewResourcePool("security", 10, 20),
		NewResourcePool("turnstiles", 10, 20),
		NewResourcePool("vendors", 10, 20),
		NewResourcePool("exit_gates", 10, 20),
		NewDepletablePool("parking", 100),
		counters)
	return c, counters
}

func TestCollectorWaitBufferClearedPerTick(t *testing.T) {
	c, _ := newTestCollector(1000)

	c.RecordWait(StageSecurity, 2.0)
	c.RecordWait(StageSecurity, 4.0)
	c.takeSnapshot(1.0)

	snap := c.snapshots[0]
	require.Equal(t, 3.0, snap.AvgSecurityWait)
	require.Equal(t, 4.0, snap.MaxSecurityWait)

	// Next tick has no samples; features reset, they are per-interval
	c.takeSnapshot(2.0)
	snap = c.snapshots[1]
	require.Equal(t, 0.0, snap.AvgSecurityWait)
	require.Equal(t, 0.0, snap.MaxSecurityWait)
}

func TestCollectorRates(t *testing.T) {
	c, counters := newTestCollector(1000)

	counters.Arrived = 50
	c.takeSnapshot(1.0)
	require.Equal(t, 50.0, c.snapshots[0].ArrivalRate)

	counters.Arrived = 80
	counters.Exited = 10
	c.takeSnapshot(2.0)
	snap := c.snapshots[1]
	require.Equal(t, 30.0, snap.ArrivalRate)
	require.Equal(t, 10.0, snap.ExitRate)
	require.Equal(t, 20.0, snap.NetFlowRate)
}

func TestCollectorLagFeatures(t *testing.T) {
	c, counters := newTestCollector(1000)

	c.takeSnapshot(1.0)
	require.Equal(t, 0.0, c.snapshots[0].ArrivalRateLag1)

	counters.Arrived = 50
	c.takeSnapshot(2.0)
	// Lag1 is the previous tick's rate
	require.Equal(t, 0.0, c.snapshots[1].ArrivalRateLag1)

	counters.Arrived = 80
	c.takeSnapshot(3.0)
	snap := c.snapshots[2]
	require.Equal(t, 50.0, snap.ArrivalRateLag1)
	// MA5 over ticks seen so far: (0 + 50 + 30) / 3
	require.InDelta(t, 26.67, snap.ArrivalRateMA5, 0.01)
}

func TestCollectorOccupancyAndFill(t *testing.T) {
	c, counters := newTestCollector(200)

	counters.Arrived = 150
	counters.Completed = 100
	counters.Exited = 30
	c.takeSnapshot(1.0)

	snap := c.snapshots[0]
	require.Equal(t, 70, snap.FansInStadium)
	require.Equal(t, 0.5, snap.FillRatio)
	require.Equal(t, 100, snap.ParkingFree)
}

func TestCollectorTicksOnSchedule(t *testing.T) {
	c, _ := newTestCollector(100)
	s := NewScheduler()

	c.Start(s)
	s.Run(5.5)

	require.Len(t, c.Snapshots(), 5)
	for i, snap := range c.Snapshots() {
		require.Equal(t, float64(i+1), snap.Time)
	}

	latest, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, 5.0, latest.Time)
}

func TestCollectorStageStatsAccumulate(t *testing.T) {
	c, _ := newTestCollector(100)

	c.RecordWait(StageExit, 1.0)
	c.takeSnapshot(1.0)
	c.RecordWait(StageExit, 3.0)
	c.RecordWait(StageExit, 5.0)
	c.takeSnapshot(2.0)

	// Run-level stats survive the per-tick buffer clears
	stats := c.StageStats(StageExit)
	require.Equal(t, 3, stats.Count)
	require.Equal(t, 3.0, stats.Mean)
	require.Equal(t, 5.0, stats.Max)
}

func TestSnapshotRecordMatchesColumns(t *testing.T) {
	require.Len(t, Snapshot{}.Record(), len(SnapshotColumns()))
	require.Len(t, ControlAction{}.Record(), len(ActionColumns()))
}
