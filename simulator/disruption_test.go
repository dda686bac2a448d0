package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func disruptionConfig() *SimConfig {
	cfg := DefaultConfig()
	d := &cfg.Disruptions
	d.Enabled = true
	d.MalfunctionInterval = Fixed(50)
	d.MalfunctionMin = 2
	d.MalfunctionMax = 2
	d.MalfunctionRepair = Fixed(10)
	d.TurnstileFloor = 10
	return cfg
}

func TestTurnstileMalfunctionRestoresCapacity(t *testing.T) {
	e, err := NewEngine(disruptionConfig())
	require.NoError(t, err)

	e.startDisruptions()

	e.sched.Run(49)
	require.Equal(t, 40, e.turnstiles.Capacity())

	// Malfunction at t=50 loses 2 turnstiles, repair 10 minutes later
	e.sched.Run(55)
	require.Equal(t, 38, e.turnstiles.Capacity())

	e.sched.Run(65)
	require.Equal(t, 40, e.turnstiles.Capacity())
}

func TestTurnstileMalfunctionFloor(t *testing.T) {
	cfg := disruptionConfig()
	cfg.Disruptions.TurnstileFloor = 39
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	e.startDisruptions()
	e.sched.Run(55)
	require.Equal(t, 39, e.turnstiles.Capacity())
}

func TestVendorBreakReducesAndRestores(t *testing.T) {
	cfg := disruptionConfig()
	cfg.Disruptions.BreakEvery = 30
	cfg.Disruptions.BreakFraction = 0.25
	cfg.Disruptions.BreakDuration = 5
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	e.startDisruptions()

	// Break at t=30: a quarter of 120 vendors step away
	e.sched.Run(32)
	require.Equal(t, 90, e.vendors.Capacity())

	e.sched.Run(36)
	require.Equal(t, 120, e.vendors.Capacity())
}

func TestDisruptionsDisabledByDefault(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	e.startDisruptions()
	require.Equal(t, 0, e.sched.Pending())
}
