package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// journeyConfig strips all randomness out of the journey: fixed
// service times, no optional branches, everyone leaves at the final
// whistle.
func journeyConfig() *SimConfig {
	cfg := DefaultConfig()
	cfg.Population = 3
	cfg.KickoffTime = 0
	cfg.MatchDuration = 10
	cfg.HalftimeStart = 0
	cfg.HalftimeEnd = 0
	cfg.Horizon = 30
	cfg.Turnstiles = PoolConfig{Capacity: 1, Max: 2}
	cfg.Controller.Enabled = false

	b := &cfg.Behavior
	b.ParkingProb = 0
	b.SecurityService = Fixed(0)
	b.SecurityAlarmProb = 0
	b.TurnstileService = Fixed(2)
	b.TicketFailureProb = 0
	b.ConcourseWalk = Fixed(0)
	b.BathroomProb = 0
	b.MerchProb = 0
	b.VendorProb = 0
	b.SeatFindTime = Fixed(0)
	b.ExitService = Fixed(0)
	b.ExitChoices = []ExitChoice{{Prob: 1, MinOffset: 0, MaxOffset: 0}}
	return cfg
}

// Three fans hitting a single 2-minute turnstile at t=0,1,2 must be
// seated at exactly t=2,4,6: strict FIFO, no overtaking.
func TestSingleTurnstileThroughput(t *testing.T) {
	e, err := NewEngine(journeyConfig())
	require.NoError(t, err)

	agents := []*Agent{{ID: 1}, {ID: 2}, {ID: 3}}
	for i, a := range agents {
		a := a
		e.sched.At(float64(i), func() { e.startAgent(a) })
	}
	e.sched.Run(30)

	require.Equal(t, 2.0, agents[0].SeatedAt)
	require.Equal(t, 4.0, agents[1].SeatedAt)
	require.Equal(t, 6.0, agents[2].SeatedAt)

	// All leave together at the final whistle through idle gates
	for _, a := range agents {
		require.Equal(t, 10.0, a.ExitedAt)
	}
	require.Equal(t, Counters{Arrived: 3, Completed: 3, Exited: 3}, e.counters)
}

func TestEngineDeterministicReplay(t *testing.T) {
	run := func() *Results {
		e, err := NewEngine(SmallConfig())
		require.NoError(t, err)
		return e.Run()
	}

	a, b := run(), run()
	require.Equal(t, a.Summary, b.Summary)
	require.Equal(t, a.Snapshots, b.Snapshots)
	require.Equal(t, a.Actions, b.Actions)
}

func TestEngineSeedChangesOutcome(t *testing.T) {
	cfg1 := SmallConfig()
	cfg2 := SmallConfig()
	cfg2.RandomSeed = cfg1.RandomSeed + 1

	e1, err := NewEngine(cfg1)
	require.NoError(t, err)
	e2, err := NewEngine(cfg2)
	require.NoError(t, err)

	require.NotEqual(t, e1.Run().Snapshots, e2.Run().Snapshots)
}

func TestEngineConservation(t *testing.T) {
	e, err := NewEngine(SmallConfig())
	require.NoError(t, err)
	results := e.Run()

	require.NotEmpty(t, results.Snapshots)
	prev := Snapshot{}
	for _, s := range results.Snapshots {
		require.GreaterOrEqual(t, s.FansCompleted, s.FansExited)
		require.GreaterOrEqual(t, s.FansArrived, s.FansCompleted)
		require.GreaterOrEqual(t, s.FansExited, 0)
		require.GreaterOrEqual(t, s.FansInStadium, 0)

		// Counters never go backwards
		require.GreaterOrEqual(t, s.FansArrived, prev.FansArrived)
		require.GreaterOrEqual(t, s.FansCompleted, prev.FansCompleted)
		require.GreaterOrEqual(t, s.FansExited, prev.FansExited)
		prev = s
	}
}

func TestEngineHorizonTruncation(t *testing.T) {
	cfg := SmallConfig()
	cfg.Horizon = 200 // Cut off before the exit wave finishes
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	results := e.Run()

	s := results.Summary
	require.Greater(t, s.Arrived, s.Exited)
	require.Equal(t, s.Arrived-s.Exited, s.AbandonedInFlight)
	require.Equal(t, 200.0, e.Now())
}

func TestEngineStepMatchesRunClock(t *testing.T) {
	cfg := SmallConfig()
	cfg.Horizon = 50
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		e.Step(5)
	}
	require.Equal(t, 50.0, e.Now())
	require.NotEmpty(t, e.Collector().Snapshots())
	require.Greater(t, e.Counters().Arrived, 0)
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = -1
	_, err := NewEngine(cfg)
	require.Error(t, err)

	_, err = NewEngine(nil)
	require.Error(t, err)
}

func TestEnginePoolCapacitiesSnapshot(t *testing.T) {
	cfg := SmallConfig()
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	caps := e.PoolCapacities()
	require.Equal(t, cfg.Security.Capacity, caps.Security)
	require.Equal(t, cfg.Turnstiles.Capacity, caps.Turnstiles)
	require.Equal(t, cfg.Vendors.Capacity, caps.Vendors)
	require.Equal(t, cfg.ExitGates.Capacity, caps.ExitGates)
}
