package simulator

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine owns one simulation run: the scheduler, the RNG stream, the
// resource pools and every process operating on them. All state is
// advanced from a single goroutine; callers drive it with Run or Step.
type Engine struct {
	config *SimConfig
	sched  *Scheduler
	rng    *rand.Rand

	security   *ResourcePool
	turnstiles *ResourcePool
	vendors    *ResourcePool
	exitGates  *ResourcePool
	parking    *DepletablePool

	counters   Counters
	collector  *Collector
	controller *Controller
	arrivals   *ArrivalGenerator

	// Service-time multiplier applied at the turnstiles; the controller
	// lowers it below 1.0 to throttle entry.
	turnstileFactor float64

	started bool

	// LogEvent, if set, receives human-readable progress lines.
	LogEvent func(msg string)
}

// Summary aggregates a finished (or truncated) run.
type Summary struct {
	Arrived   int `json:"arrived"`
	Completed int `json:"completed"`
	Exited    int `json:"exited"`
	// Fans still mid-journey when the horizon cut the run off.
	AbandonedInFlight int `json:"abandonedInFlight"`

	SecurityWait  WaitStats `json:"securityWait"`
	TurnstileWait WaitStats `json:"turnstileWait"`
	VendorWait    WaitStats `json:"vendorWait"`
	ExitWait      WaitStats `json:"exitWait"`

	FinalCapacities Capacities `json:"finalCapacities"`
	ControlActions  int        `json:"controlActions"`
}

// Results holds everything a run produced.
type Results struct {
	Snapshots []Snapshot      `json:"snapshots"`
	Actions   []ControlAction `json:"actions"`
	Summary   Summary         `json:"summary"`
}

// NewEngine validates the config and assembles a ready-to-run engine.
func NewEngine(cfg *SimConfig) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		config:          cfg,
		sched:           NewScheduler(),
		rng:             rand.New(rand.NewSource(seed)),
		security:        NewResourcePool("security", cfg.Security.Capacity, cfg.Security.Max),
		turnstiles:      NewResourcePool("turnstiles", cfg.Turnstiles.Capacity, cfg.Turnstiles.Max),
		vendors:         NewResourcePool("vendors", cfg.Vendors.Capacity, cfg.Vendors.Max),
		exitGates:       NewResourcePool("exit_gates", cfg.ExitGates.Capacity, cfg.ExitGates.Max),
		parking:         NewDepletablePool("parking", cfg.ParkingCapacity),
		turnstileFactor: 1.0,
	}
	e.collector = NewCollector(cfg.TickInterval, cfg.Population,
		e.security, e.turnstiles, e.vendors, e.exitGates, e.parking, &e.counters)
	e.controller = newController(e)
	e.arrivals = newArrivalGenerator(e)
	return e, nil
}

// SetPredictor installs an external risk predictor. Must be called
// before Run or the first Step.
func (e *Engine) SetPredictor(p RiskPredictor) { e.controller.predictor = p }

// Now returns the current virtual time in minutes.
func (e *Engine) Now() float64 { return e.sched.Now() }

// Config returns the engine's configuration.
func (e *Engine) Config() *SimConfig { return e.config }

// Counters returns the current journey counters.
func (e *Engine) Counters() Counters { return e.counters }

// Collector exposes the metrics collector for live inspection.
func (e *Engine) Collector() *Collector { return e.collector }

// Controller exposes the adaptive controller and its action log.
func (e *Engine) Controller() *Controller { return e.controller }

// TurnstileFactor returns the current turnstile service multiplier.
func (e *Engine) TurnstileFactor() float64 { return e.turnstileFactor }

// PoolCapacities returns every pool's current capacity.
func (e *Engine) PoolCapacities() Capacities {
	return Capacities{
		Security:   e.security.Capacity(),
		Turnstiles: e.turnstiles.Capacity(),
		Vendors:    e.vendors.Capacity(),
		ExitGates:  e.exitGates.Capacity(),
	}
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.LogEvent != nil {
		e.LogEvent(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) startProcesses() {
	if e.started {
		return
	}
	e.started = true
	e.collector.Start(e.sched)
	e.arrivals.start()
	e.controller.start()
	e.startDisruptions()
	e.logf("simulation started: population=%d kickoff=%.0f horizon=%.0f seed=%d",
		e.config.Population, e.config.KickoffTime, e.config.Horizon, e.config.RandomSeed)
}

// Run executes the whole simulation up to the horizon and returns the
// collected results. Fans still mid-journey at the horizon are counted
// as abandoned.
func (e *Engine) Run() *Results {
	e.startProcesses()
	e.sched.Run(e.config.Horizon)
	return e.Results()
}

// Step advances virtual time by dt minutes, executing every due event.
// Used by interactive front ends; Run and Step compose on the same
// clock.
func (e *Engine) Step(dt float64) {
	e.startProcesses()
	e.sched.Step(dt)
}

// Results builds the result set for the run so far.
func (e *Engine) Results() *Results {
	return &Results{
		Snapshots: e.collector.Snapshots(),
		Actions:   e.controller.Actions(),
		Summary: Summary{
			Arrived:           e.counters.Arrived,
			Completed:         e.counters.Completed,
			Exited:            e.counters.Exited,
			AbandonedInFlight: e.counters.Arrived - e.counters.Exited,
			SecurityWait:      e.collector.StageStats(StageSecurity),
			TurnstileWait:     e.collector.StageStats(StageTurnstile),
			VendorWait:        e.collector.StageStats(StageVendor),
			ExitWait:          e.collector.StageStats(StageExit),
			FinalCapacities:   e.PoolCapacities(),
			ControlActions:    len(e.controller.actions),
		},
	}
}
