package simulator

import (
	"fmt"
	"math/rand"
)

// AgentVariant represents the kind of fan
type AgentVariant int

const (
	AgentRegular AgentVariant = iota
	AgentGroup                // Member of a group arriving together
	AgentVIP                  // Fast-track services, lounge access
)

// String returns the string representation of AgentVariant
func (v AgentVariant) String() string {
	switch v {
	case AgentRegular:
		return "regular"
	case AgentGroup:
		return "group"
	case AgentVIP:
		return "vip"
	default:
		return "unknown"
	}
}

// Agent is one fan moving through the stadium. The journey is a chain
// of continuations driven by the scheduler:
//
//	Arrived -> [Parking] -> Security -> Turnstile ->
//	Concourse{Vendor?, Bathroom?, Merchandise?} -> Seated ->
//	Watching{Halftime?} -> ExitDecision -> ExitGate ->
//	[ReturnParking] -> Exited
//
// Agents never interact directly; their only side effects are pool
// holds and the global counters.
type Agent struct {
	ID        int          `json:"id"`
	Variant   AgentVariant `json:"variant"`
	GroupSize int          `json:"groupSize,omitempty"` // Shared by all members of one group
	ArrivedAt float64      `json:"arrivedAt"`
	SeatedAt  float64      `json:"seatedAt"`
	ExitedAt  float64      `json:"exitedAt"`

	usesParking bool
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent(%d, %s)", a.ID, a.Variant)
}

// sampleExitOffset draws one bucket from the categorical exit-timing
// distribution and a uniform offset within it.
func sampleExitOffset(rng *rand.Rand, choices []ExitChoice) float64 {
	r := rng.Float64()
	acc := 0.0
	for _, ch := range choices {
		acc += ch.Prob
		if r < acc {
			return ch.MinOffset + rng.Float64()*(ch.MaxOffset-ch.MinOffset)
		}
	}
	// Probabilities summing below 1 fall through to the last bucket.
	last := choices[len(choices)-1]
	return last.MinOffset + rng.Float64()*(last.MaxOffset-last.MinOffset)
}

func (e *Engine) uniform(min, max float64) float64 {
	return min + e.rng.Float64()*(max-min)
}

// startAgent begins one fan's journey at the current virtual time.
func (e *Engine) startAgent(a *Agent) {
	a.ArrivedAt = e.sched.Now()
	e.counters.Arrived++

	var parkingProb float64
	var walk Dist
	switch a.Variant {
	case AgentVIP:
		parkingProb = 1.0 // Reserved spots: VIPs park whenever a spot is free
		walk = e.config.VIP.ParkingWalk
	case AgentGroup:
		parkingProb = e.config.Group.ParkingProb
		walk = e.config.Group.ParkingWalk
	default:
		parkingProb = e.config.Behavior.ParkingProb
		walk = e.config.Behavior.ParkingWalk
	}

	// Skip-if-empty: a fan who finds the lot full drives on and walks
	// in, rather than queueing for a spot.
	if e.rng.Float64() < parkingProb && e.parking.Level() > 0 {
		a.usesParking = true
		_ = e.parking.Get(1, func() {
			e.sched.Schedule(walk.Sample(e.rng), func() { e.agentSecurity(a) })
		})
		return
	}
	e.agentSecurity(a)
}

func (e *Engine) agentSecurity(a *Agent) {
	b := &e.config.Behavior
	e.security.Acquire(e.sched.Now(), func(waited float64) {
		e.collector.RecordWait(StageSecurity, waited)
		var service float64
		if e.rng.Float64() < b.SecurityAlarmProb {
			// Detector alarm, manual check
			service = b.SecurityAlarmService.Sample(e.rng)
		} else {
			service = b.SecurityService.Sample(e.rng)
		}
		if a.Variant == AgentVIP {
			service *= e.config.VIP.ServiceFactor
		}
		e.sched.Schedule(service, func() {
			e.security.Release(e.sched.Now())
			e.agentTurnstile(a)
		})
	})
}

func (e *Engine) agentTurnstile(a *Agent) {
	b := &e.config.Behavior
	e.turnstiles.Acquire(e.sched.Now(), func(waited float64) {
		e.collector.RecordWait(StageTurnstile, waited)
		var service float64
		if e.rng.Float64() < b.TicketFailureProb {
			// Scan failure, staff assistance
			service = b.TicketFailureService.Sample(e.rng)
		} else {
			service = b.TurnstileService.Sample(e.rng)
		}
		// Throttled turnstiles (factor < 1) run extra checks.
		service /= e.turnstileFactor
		switch a.Variant {
		case AgentVIP:
			service *= e.config.VIP.ServiceFactor
		case AgentGroup:
			service *= e.config.Group.ServiceFactor
		}
		e.sched.Schedule(service, func() {
			e.turnstiles.Release(e.sched.Now())
			e.agentConcourse(a)
		})
	})
}

func (e *Engine) agentConcourse(a *Agent) {
	if a.Variant == AgentVIP {
		// Lounge visit replaces the concourse branch.
		if e.rng.Float64() < e.config.VIP.LoungeProb {
			e.sched.Schedule(e.config.VIP.LoungeTime.Sample(e.rng), func() { e.agentSeat(a) })
			return
		}
		e.agentSeat(a)
		return
	}
	walk := e.config.Behavior.ConcourseWalk.Sample(e.rng)
	e.sched.Schedule(walk, func() { e.concourseBathroom(a) })
}

func (e *Engine) concourseBathroom(a *Agent) {
	prob := e.config.Behavior.BathroomProb
	if a.Variant == AgentGroup {
		prob = e.config.Group.BathroomProb
	}
	if e.rng.Float64() < prob {
		e.sched.Schedule(e.config.Behavior.BathroomTime.Sample(e.rng), func() { e.concourseMerch(a) })
		return
	}
	e.concourseMerch(a)
}

func (e *Engine) concourseMerch(a *Agent) {
	// Groups head for food, not the shop.
	if a.Variant == AgentRegular && e.rng.Float64() < e.config.Behavior.MerchProb {
		e.sched.Schedule(e.config.Behavior.MerchTime.Sample(e.rng), func() { e.concourseVendor(a) })
		return
	}
	e.concourseVendor(a)
}

func (e *Engine) concourseVendor(a *Agent) {
	prob := e.config.Behavior.VendorProb
	serviceDist := e.config.Behavior.VendorService
	if a.Variant == AgentGroup {
		prob = e.config.Group.VendorProb
		serviceDist = e.config.Group.VendorService
	}
	if e.rng.Float64() >= prob {
		e.agentSeat(a)
		return
	}
	e.vendors.Acquire(e.sched.Now(), func(waited float64) {
		e.collector.RecordWait(StageVendor, waited)
		service := serviceDist.Sample(e.rng)
		if a.Variant == AgentGroup {
			service *= e.config.Group.ServiceFactor
		}
		e.sched.Schedule(service, func() {
			e.vendors.Release(e.sched.Now())
			e.agentSeat(a)
		})
	})
}

func (e *Engine) agentSeat(a *Agent) {
	e.sched.Schedule(e.config.Behavior.SeatFindTime.Sample(e.rng), func() {
		a.SeatedAt = e.sched.Now()
		e.counters.Completed++
		e.agentWatch(a)
	})
}

func (e *Engine) agentWatch(a *Agent) {
	halftime := e.config.KickoffTime + e.config.HalftimeStart
	if a.Variant != AgentVIP && e.sched.Now() < halftime {
		e.sched.At(halftime+e.uniform(0, 3), func() { e.halftimeActivity(a) })
		return
	}
	e.agentExitDecision(a)
}

func (e *Engine) halftimeActivity(a *Agent) {
	b := &e.config.Behavior
	r := e.rng.Float64()
	switch {
	case r < b.HalftimeVendorProb:
		e.vendors.Acquire(e.sched.Now(), func(waited float64) {
			e.collector.RecordWait(StageVendor, waited)
			e.sched.Schedule(b.HalftimeVendorService.Sample(e.rng), func() {
				e.vendors.Release(e.sched.Now())
				e.returnToSeat(a)
			})
		})
	case r < b.HalftimeVendorProb+b.HalftimeBathroomProb:
		e.sched.Schedule(b.HalftimeBathroomTime.Sample(e.rng), func() { e.returnToSeat(a) })
	default:
		e.returnToSeat(a)
	}
}

func (e *Engine) returnToSeat(a *Agent) {
	secondHalf := e.config.KickoffTime + e.config.HalftimeEnd
	if e.sched.Now() < secondHalf {
		e.sched.At(secondHalf+e.uniform(-2, 5), func() { e.agentExitDecision(a) })
		return
	}
	e.agentExitDecision(a)
}

// agentExitDecision draws the fan's exit time once, relative to the
// final whistle, then sleeps until it. The At clamp covers fans whose
// journey ran past their drawn slot.
func (e *Engine) agentExitDecision(a *Agent) {
	choices := e.config.Behavior.ExitChoices
	switch a.Variant {
	case AgentGroup:
		choices = e.config.Group.ExitChoices
	case AgentVIP:
		choices = e.config.VIP.ExitChoices
	}
	exitAt := e.config.MatchEnd() + sampleExitOffset(e.rng, choices)
	e.sched.At(exitAt, func() { e.agentExitGate(a) })
}

func (e *Engine) agentExitGate(a *Agent) {
	e.exitGates.Acquire(e.sched.Now(), func(waited float64) {
		e.collector.RecordWait(StageExit, waited)
		service := e.config.Behavior.ExitService.Sample(e.rng)
		switch a.Variant {
		case AgentVIP:
			service *= e.config.VIP.ServiceFactor
		case AgentGroup:
			service *= e.config.Group.ServiceFactor
		}
		e.sched.Schedule(service, func() {
			e.exitGates.Release(e.sched.Now())
			e.agentDepart(a)
		})
	})
}

func (e *Engine) agentDepart(a *Agent) {
	finish := func() {
		a.ExitedAt = e.sched.Now()
		e.counters.Exited++
	}
	if a.usesParking {
		e.sched.Schedule(e.config.Behavior.ParkingReturn.Sample(e.rng), func() {
			e.parking.Put(1)
			finish()
		})
		return
	}
	finish()
}
