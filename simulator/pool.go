package simulator

// poolWaiter is one suspended process blocked on a ResourcePool.
type poolWaiter struct {
	enqueuedAt float64
	fn         func(waited float64)
}

// ResourcePool is a bounded-concurrency server (security lanes,
// turnstiles, vendor stations, exit gates). Grants are strictly FIFO
// relative to the wait queue; capacity is mutated in place by Resize so
// queued waiters are never dropped.
//
// Invariant: holders <= capacity at all times. A capacity decrease
// below the current holder count evicts nobody; headroom reappears as
// holders release.
type ResourcePool struct {
	name        string
	capacity    int
	maxCapacity int
	holders     int
	waiters     []*poolWaiter
}

// NewResourcePool creates a pool with an initial and a maximum
// capacity. Resize clamps to [0, maxCapacity].
func NewResourcePool(name string, capacity, maxCapacity int) *ResourcePool {
	if maxCapacity < capacity {
		maxCapacity = capacity
	}
	return &ResourcePool{
		name:        name,
		capacity:    capacity,
		maxCapacity: maxCapacity,
	}
}

func (p *ResourcePool) Name() string     { return p.name }
func (p *ResourcePool) Capacity() int    { return p.capacity }
func (p *ResourcePool) MaxCapacity() int { return p.maxCapacity }
func (p *ResourcePool) Holders() int     { return p.holders }
func (p *ResourcePool) QueueLen() int    { return len(p.waiters) }

// Utilization returns holders/capacity in [0, 1].
func (p *ResourcePool) Utilization() float64 {
	if p.capacity == 0 {
		return 0
	}
	return float64(p.holders) / float64(p.capacity)
}

// Acquire grants the pool to the calling process. If capacity is free
// the grant is immediate and fn runs synchronously with waited=0;
// otherwise the process suspends at the tail of the FIFO queue and fn
// runs when capacity frees up, with the measured queue wait.
func (p *ResourcePool) Acquire(now float64, fn func(waited float64)) {
	if p.holders < p.capacity && len(p.waiters) == 0 {
		p.holders++
		fn(0)
		return
	}
	p.waiters = append(p.waiters, &poolWaiter{enqueuedAt: now, fn: fn})
	p.grant(now)
}

// Release returns one unit of capacity. If the wait queue is non-empty
// the head waiter is granted immediately.
func (p *ResourcePool) Release(now float64) {
	if p.holders > 0 {
		p.holders--
	}
	p.grant(now)
}

// Resize mutates capacity in place, clamped to [0, maxCapacity]. The
// wait queue is preserved across the change; a capacity increase grants
// waiters in enqueue order up to the new headroom.
func (p *ResourcePool) Resize(now float64, newCapacity int) {
	if newCapacity < 0 {
		newCapacity = 0
	}
	if newCapacity > p.maxCapacity {
		newCapacity = p.maxCapacity
	}
	p.capacity = newCapacity
	p.grant(now)
}

// grant moves waiters into holder slots while headroom exists.
func (p *ResourcePool) grant(now float64) {
	for p.holders < p.capacity && len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.holders++
		w.fn(now - w.enqueuedAt)
	}
}

// stockWaiter is one suspended process blocked on a DepletablePool get.
type stockWaiter struct {
	n  int
	fn func()
}

// DepletablePool is a bounded-stock resource (parking). Get blocks
// FIFO until enough units are available; Put always succeeds, clamped
// to capacity.
type DepletablePool struct {
	name     string
	level    int
	capacity int
	waiters  []*stockWaiter
}

// NewDepletablePool creates a full pool: level starts at capacity.
func NewDepletablePool(name string, capacity int) *DepletablePool {
	return &DepletablePool{
		name:     name,
		level:    capacity,
		capacity: capacity,
	}
}

func (d *DepletablePool) Name() string  { return d.name }
func (d *DepletablePool) Level() int    { return d.level }
func (d *DepletablePool) Capacity() int { return d.capacity }
func (d *DepletablePool) QueueLen() int { return len(d.waiters) }

// Get atomically takes n units, running fn once they are held. If the
// stock is short the process suspends FIFO behind earlier getters.
// n greater than the pool's total capacity can never be satisfied;
// that is a configuration error and is rejected here as a backstop
// (config validation reports it before the run starts).
func (d *DepletablePool) Get(n int, fn func()) error {
	if n > d.capacity {
		return ErrStarvation(d.name, n, d.capacity)
	}
	d.waiters = append(d.waiters, &stockWaiter{n: n, fn: fn})
	d.drain()
	return nil
}

// Put returns n units, clamped to capacity, then wakes blocked getters
// in order while they can be satisfied.
func (d *DepletablePool) Put(n int) {
	d.level += n
	if d.level > d.capacity {
		d.level = d.capacity
	}
	d.drain()
}

func (d *DepletablePool) drain() {
	for len(d.waiters) > 0 && d.waiters[0].n <= d.level {
		w := d.waiters[0]
		d.waiters = d.waiters[1:]
		d.level -= w.n
		w.fn()
	}
}
