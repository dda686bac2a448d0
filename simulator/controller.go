package simulator

import (
	"encoding/json"
	"fmt"
	"math"
)

// TargetType identifies which side of the stadium a control action
// addresses.
type TargetType int

const (
	TargetEntry TargetType = iota
	TargetExit
)

// String returns the string representation of TargetType
func (t TargetType) String() string {
	switch t {
	case TargetEntry:
		return "ENTRY"
	case TargetExit:
		return "EXIT"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for TargetType
func (t TargetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Severity grades how hard the controller intervenes.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityModerate
	SeverityStrong
)

// String returns the string representation of Severity
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityModerate:
		return "MODERATE"
	case SeverityStrong:
		return "STRONG"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Capacities records every pool's capacity after an action applied.
type Capacities struct {
	Security   int `json:"security"`
	Turnstiles int `json:"turnstiles"`
	Vendors    int `json:"vendors"`
	ExitGates  int `json:"exitGates"`
}

// ControlAction is one appended entry of the controller's decision log.
type ControlAction struct {
	Time        float64    `json:"time"`
	Target      TargetType `json:"target"`
	Severity    Severity   `json:"severity"`
	RiskScore   float64    `json:"riskScore"`
	QueueLength int        `json:"queueLength"`
	WaitTime    float64    `json:"waitTime"`
	Resulting   Capacities `json:"resultingCapacities"`
}

// ActionColumns returns the CSV header for the control action log.
func ActionColumns() []string {
	return []string{
		"time", "target", "severity", "riskScore", "queueLength", "waitTime",
		"securityCapacity", "turnstileCapacity", "vendorCapacity", "exitCapacity",
	}
}

// Record renders the action as one CSV row.
func (a ControlAction) Record() []string {
	return []string{
		fmt.Sprintf("%.1f", a.Time),
		a.Target.String(),
		a.Severity.String(),
		fmt.Sprintf("%.4f", a.RiskScore),
		fmt.Sprintf("%d", a.QueueLength),
		fmt.Sprintf("%.3f", a.WaitTime),
		fmt.Sprintf("%d", a.Resulting.Security),
		fmt.Sprintf("%d", a.Resulting.Turnstiles),
		fmt.Sprintf("%d", a.Resulting.Vendors),
		fmt.Sprintf("%d", a.Resulting.ExitGates),
	}
}

// RiskPredictor scores congestion risk for one side of the stadium
// from the latest metrics snapshot. External predictors (e.g. a model
// behind an RPC) plug in here; any error falls back to the built-in
// heuristic for that decision.
type RiskPredictor interface {
	PredictRisk(snap Snapshot, target TargetType) (float64, error)
}

// Controller periodically inspects the latest snapshot and resizes
// pools when a weighted risk score crosses the configured thresholds.
// Decisions and their resulting capacities are kept in an append-only
// log.
type Controller struct {
	engine    *Engine
	cfg       *ControllerConfig
	predictor RiskPredictor
	actions   []ControlAction
}

func newController(e *Engine) *Controller {
	return &Controller{engine: e, cfg: &e.config.Controller}
}

// Actions returns the append-only decision log.
func (c *Controller) Actions() []ControlAction { return c.actions }

func (c *Controller) start() {
	if !c.cfg.Enabled {
		return
	}
	interval := c.engine.config.ControlInterval
	var tick func()
	tick = func() {
		c.decide()
		c.engine.sched.Schedule(interval, tick)
	}
	c.engine.sched.Schedule(interval, tick)
}

// entryTimeRisk rises as kickoff approaches and drops to zero once the
// match is under way.
func (c *Controller) entryTimeRisk(now float64) float64 {
	mtk := c.engine.config.KickoffTime - now
	switch {
	case mtk <= 0:
		return 0
	case mtk < 30:
		return 0.3
	case mtk < 60:
		return 0.1
	default:
		return 0
	}
}

// exitTimeRisk rises through the second half and peaks right after the
// final whistle.
func (c *Controller) exitTimeRisk(now float64) float64 {
	end := c.engine.config.MatchEnd()
	if now >= end {
		past := now - end
		switch {
		case past < 30:
			return 0.5
		case past < 60:
			return 0.3
		default:
			return 0.1
		}
	}
	if now >= c.engine.config.KickoffTime+c.cfg.PostHalftimeOffset {
		return 0.15
	}
	return 0
}

func riskScore(w RiskWeights, queue, queueMax, wait, waitMax, timeRisk float64) float64 {
	q := 0.0
	if queueMax > 0 {
		q = math.Min(1, queue/queueMax)
	}
	wt := 0.0
	if waitMax > 0 {
		wt = math.Min(1, wait/waitMax)
	}
	return w.Queue*q + w.Wait*wt + w.Time*timeRisk
}

// decide evaluates both sides, picks the dominant one, and applies the
// matching capacity action.
func (c *Controller) decide() {
	snap, ok := c.engine.collector.Latest()
	if !ok {
		return
	}
	now := c.engine.sched.Now()

	entryQueue := snap.SecurityQueue + snap.TurnstileQueue
	entryWait := snap.AvgSecurityWait + snap.AvgTurnstileWait
	entryRisk := riskScore(c.cfg.EntryWeights,
		float64(entryQueue), c.cfg.EntryQueueMax,
		entryWait, c.cfg.EntryWaitMax,
		c.entryTimeRisk(now))
	exitRisk := riskScore(c.cfg.ExitWeights,
		float64(snap.ExitQueue), c.cfg.ExitQueueMax,
		snap.AvgExitWait, c.cfg.ExitWaitMax,
		c.exitTimeRisk(now))

	if c.predictor != nil {
		if r, err := c.predictor.PredictRisk(snap, TargetEntry); err == nil {
			entryRisk = r
		} else {
			c.engine.logf("risk predictor failed for entry, using heuristic: %v", err)
		}
		if r, err := c.predictor.PredictRisk(snap, TargetExit); err == nil {
			exitRisk = r
		} else {
			c.engine.logf("risk predictor failed for exit, using heuristic: %v", err)
		}
	}

	// Past the late-game marker with a real exit queue, EXIT wins even
	// if the entry score is higher.
	target := TargetEntry
	risk := entryRisk
	if exitRisk > entryRisk {
		target = TargetExit
		risk = exitRisk
	}
	if now > c.engine.config.KickoffTime+c.cfg.PostHalftimeOffset &&
		snap.ExitQueue > c.cfg.ExitQueueFloor {
		target = TargetExit
		risk = exitRisk
	}

	severity := SeverityNone
	switch {
	case risk >= c.cfg.StrongThreshold:
		severity = SeverityStrong
	case risk >= c.cfg.ModerateThreshold:
		severity = SeverityModerate
	}

	c.apply(now, target, severity)
	if severity == SeverityNone {
		return
	}

	queueLen := entryQueue
	wait := entryWait
	if target == TargetExit {
		queueLen = snap.ExitQueue
		wait = snap.AvgExitWait
	}

	c.actions = append(c.actions, ControlAction{
		Time:        round(now, 1),
		Target:      target,
		Severity:    severity,
		RiskScore:   round(risk, 4),
		QueueLength: queueLen,
		WaitTime:    round(wait, 3),
		Resulting: Capacities{
			Security:   c.engine.security.Capacity(),
			Turnstiles: c.engine.turnstiles.Capacity(),
			Vendors:    c.engine.vendors.Capacity(),
			ExitGates:  c.engine.exitGates.Capacity(),
		},
	})
}

func (c *Controller) apply(now float64, target TargetType, severity Severity) {
	e := c.engine
	switch severity {
	case SeverityNone:
		// Idle interval: let a throttled turnstile factor recover.
		if e.turnstileFactor < 1.0 {
			e.turnstileFactor = math.Min(1.0, e.turnstileFactor+0.1)
		}
		return
	case SeverityModerate:
		if target == TargetEntry {
			e.security.Resize(now, e.security.Capacity()+c.cfg.SecurityModerate)
			e.vendors.Resize(now, e.vendors.Capacity()+c.cfg.VendorsModerate)
			e.logf("control action: MODERATE ENTRY at t=%.1f (security=%d vendors=%d)",
				now, e.security.Capacity(), e.vendors.Capacity())
		} else {
			e.exitGates.Resize(now, e.exitGates.Capacity()+c.cfg.ExitsModerate)
			e.logf("control action: MODERATE EXIT at t=%.1f (gates=%d)", now, e.exitGates.Capacity())
		}
	case SeverityStrong:
		if target == TargetEntry {
			e.security.Resize(now, e.security.Capacity()+c.cfg.SecurityStrong)
			e.vendors.Resize(now, e.vendors.Capacity()+c.cfg.VendorsStrong)
			e.turnstileFactor = math.Max(c.cfg.TurnstileFactorMin,
				e.turnstileFactor*c.cfg.TurnstileThrottle)
			e.logf("control action: STRONG ENTRY at t=%.1f (security=%d vendors=%d factor=%.2f)",
				now, e.security.Capacity(), e.vendors.Capacity(), e.turnstileFactor)
		} else {
			e.exitGates.Resize(now, e.exitGates.Capacity()+c.cfg.ExitsStrong)
			e.logf("control action: STRONG EXIT at t=%.1f (gates=%d)", now, e.exitGates.Capacity())
		}
	}
}
