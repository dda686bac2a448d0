package simulator

import "math"

// ArrivalGenerator spawns agents according to the configured rate
// curve until the population cap is reached. Two modes:
//
//   - exponential: classic Poisson process, one agent per event with
//     exponentially distributed inter-arrival times at the current rate
//   - batch: every BatchInterval, draw a Gaussian count around
//     rate*interval and spread the spawns uniformly across the interval
//
// Both modes route each spawn through variant selection (VIP fraction
// first, then group fraction); a group spawn creates the whole group
// with staggered start times and counts every member against the cap.
type ArrivalGenerator struct {
	engine  *Engine
	cfg     *ArrivalConfig
	spawned int
	nextID  int
}

func newArrivalGenerator(e *Engine) *ArrivalGenerator {
	return &ArrivalGenerator{engine: e, cfg: &e.config.Arrival}
}

// rateAt returns the configured arrival rate (fans/minute) for virtual
// time t. Segments are keyed by minutes-to-kickoff, sorted descending;
// the first segment still ahead of t applies, past the last segment the
// tail rate does.
func (g *ArrivalGenerator) rateAt(t float64) float64 {
	mtk := g.engine.config.KickoffTime - t
	for _, seg := range g.cfg.Segments {
		if mtk > seg.MinutesToKickoff {
			return seg.RatePerMin
		}
	}
	return g.cfg.TailRatePerMin
}

func (g *ArrivalGenerator) start() {
	if g.cfg.Mode == ArrivalBatch {
		g.engine.sched.Schedule(0, g.batchTick)
		return
	}
	g.engine.sched.Schedule(0, g.nextArrival)
}

func (g *ArrivalGenerator) nextArrival() {
	if g.spawned >= g.engine.config.Population {
		return
	}
	g.spawnOne(0)
	if g.spawned >= g.engine.config.Population {
		return
	}
	rate := g.rateAt(g.engine.sched.Now())
	if rate <= 0 {
		rate = g.cfg.TailRatePerMin
	}
	if rate <= 0 {
		return
	}
	g.engine.sched.Schedule(g.engine.rng.ExpFloat64()/rate, g.nextArrival)
}

func (g *ArrivalGenerator) batchTick() {
	if g.spawned >= g.engine.config.Population {
		return
	}
	dt := g.cfg.BatchInterval
	mean := g.rateAt(g.engine.sched.Now()) * dt
	count := 0
	if mean > 0 {
		count = int(math.Round(g.engine.rng.NormFloat64()*math.Sqrt(mean) + mean))
	}
	for i := 0; i < count && g.spawned < g.engine.config.Population; i++ {
		g.spawnOne(g.engine.rng.Float64() * dt)
	}
	g.engine.sched.Schedule(dt, g.batchTick)
}

// spawnOne creates one spawn event at now+delay. A group draw creates
// SizeMin..SizeMax members, each offset by the stagger, truncated when
// the population cap would be exceeded.
func (g *ArrivalGenerator) spawnOne(delay float64) {
	e := g.engine
	r := e.rng.Float64()
	switch {
	case r < e.config.VIP.Fraction:
		g.spawnAgent(AgentVIP, 1, delay)
	case r < e.config.VIP.Fraction+e.config.Group.Fraction:
		size := e.config.Group.SizeMin
		if e.config.Group.SizeMax > e.config.Group.SizeMin {
			size += e.rng.Intn(e.config.Group.SizeMax - e.config.Group.SizeMin + 1)
		}
		for i := 0; i < size; i++ {
			if g.spawned >= e.config.Population {
				break
			}
			g.spawnAgent(AgentGroup, size, delay+float64(i)*e.config.Group.Stagger)
		}
	default:
		g.spawnAgent(AgentRegular, 1, delay)
	}
}

func (g *ArrivalGenerator) spawnAgent(variant AgentVariant, groupSize int, delay float64) {
	g.spawned++
	g.nextID++
	a := &Agent{ID: g.nextID, Variant: variant, GroupSize: groupSize}
	g.engine.sched.Schedule(delay, func() { g.engine.startAgent(a) })
}
