package simulator

// Operational disruptions: random turnstile malfunctions and scheduled
// vendor staff breaks. Both shrink a pool through Resize and restore it
// later, so queued fans keep their places throughout.

func (e *Engine) startDisruptions() {
	d := &e.config.Disruptions
	if !d.Enabled {
		return
	}
	e.sched.Schedule(d.MalfunctionInterval.Sample(e.rng), e.turnstileMalfunction)
	if d.BreakEvery > 0 {
		e.sched.Schedule(d.BreakEvery, e.vendorBreak)
	}
}

func (e *Engine) turnstileMalfunction() {
	d := &e.config.Disruptions
	lost := d.MalfunctionMin
	if d.MalfunctionMax > d.MalfunctionMin {
		lost += e.rng.Intn(d.MalfunctionMax - d.MalfunctionMin + 1)
	}
	cur := e.turnstiles.Capacity()
	reduced := cur - lost
	if reduced < d.TurnstileFloor {
		reduced = d.TurnstileFloor
	}
	restored := cur
	if reduced < cur {
		now := e.sched.Now()
		e.turnstiles.Resize(now, reduced)
		e.logf("turnstile malfunction at t=%.1f: %d -> %d", now, cur, reduced)
		e.sched.Schedule(d.MalfunctionRepair.Sample(e.rng), func() {
			e.turnstiles.Resize(e.sched.Now(), restored)
		})
	}
	e.sched.Schedule(d.MalfunctionInterval.Sample(e.rng), e.turnstileMalfunction)
}

func (e *Engine) vendorBreak() {
	d := &e.config.Disruptions
	cur := e.vendors.Capacity()
	away := int(float64(cur) * d.BreakFraction)
	reduced := cur - away
	if reduced < d.VendorFloor {
		reduced = d.VendorFloor
	}
	if reduced < cur {
		now := e.sched.Now()
		restored := cur
		e.vendors.Resize(now, reduced)
		e.logf("vendor break at t=%.1f: %d -> %d", now, cur, reduced)
		e.sched.Schedule(d.BreakDuration, func() {
			e.vendors.Resize(e.sched.Now(), restored)
		})
	}
	e.sched.Schedule(d.BreakEvery, e.vendorBreak)
}
