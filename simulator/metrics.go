package simulator

import (
	"fmt"
	"math"
)

// Stage identifies one queued journey stage.
type Stage int

const (
	StageSecurity Stage = iota
	StageTurnstile
	StageVendor
	StageExit
	numStages
)

// String returns the string representation of Stage
func (s Stage) String() string {
	switch s {
	case StageSecurity:
		return "security"
	case StageTurnstile:
		return "turnstile"
	case StageVendor:
		return "vendor"
	case StageExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Counters are the global fan-flow counters. They are the sole channel
// between agent processes and the rest of the system; every stage
// transition updates them and the collector and controller read them.
type Counters struct {
	Arrived   int `json:"arrived"`
	Completed int `json:"completed"` // Seated
	Exited    int `json:"exited"`
}

// Snapshot is one tick's worth of system state. The field set and
// units (minutes, 0-1 ratios, fans/min) are the contract with
// downstream prediction models and dashboards; immutable once taken.
type Snapshot struct {
	Time          float64 `json:"time"`
	FansArrived   int     `json:"fansArrived"`
	FansCompleted int     `json:"fansCompleted"`
	FansExited    int     `json:"fansExited"`
	FansInStadium int     `json:"fansInStadium"`
	FillRatio     float64 `json:"fillRatio"`

	ArrivalRate    float64 `json:"arrivalRate"`
	CompletionRate float64 `json:"completionRate"`
	ExitRate       float64 `json:"exitRate"`
	NetFlowRate    float64 `json:"netFlowRate"`

	SecurityQueue  int `json:"securityQueue"`
	TurnstileQueue int `json:"turnstileQueue"`
	VendorQueue    int `json:"vendorQueue"`
	ExitQueue      int `json:"exitQueue"`

	SecurityUtilization  float64 `json:"securityUtilization"`
	TurnstileUtilization float64 `json:"turnstileUtilization"`
	VendorUtilization    float64 `json:"vendorUtilization"`
	ExitUtilization      float64 `json:"exitUtilization"`

	AvgSecurityWait  float64 `json:"avgSecurityWait"`
	MaxSecurityWait  float64 `json:"maxSecurityWait"`
	AvgTurnstileWait float64 `json:"avgTurnstileWait"`
	MaxTurnstileWait float64 `json:"maxTurnstileWait"`
	AvgVendorWait    float64 `json:"avgVendorWait"`
	MaxVendorWait    float64 `json:"maxVendorWait"`
	AvgExitWait      float64 `json:"avgExitWait"`
	MaxExitWait      float64 `json:"maxExitWait"`

	ArrivalRateLag1 float64 `json:"arrivalRateLag1"`
	ArrivalRateMA5  float64 `json:"arrivalRateMA5"`
	ParkingFree     int     `json:"parkingFree"`
}

// SnapshotColumns returns the CSV column order for snapshot logs.
// Order and names match the Snapshot JSON field names.
func SnapshotColumns() []string {
	return []string{
		"time",
		"fansArrived", "fansCompleted", "fansExited", "fansInStadium", "fillRatio",
		"arrivalRate", "completionRate", "exitRate", "netFlowRate",
		"securityQueue", "turnstileQueue", "vendorQueue", "exitQueue",
		"securityUtilization", "turnstileUtilization", "vendorUtilization", "exitUtilization",
		"avgSecurityWait", "maxSecurityWait",
		"avgTurnstileWait", "maxTurnstileWait",
		"avgVendorWait", "maxVendorWait",
		"avgExitWait", "maxExitWait",
		"arrivalRateLag1", "arrivalRateMA5", "parkingFree",
	}
}

// Record renders the snapshot as one CSV row in SnapshotColumns order.
func (s Snapshot) Record() []string {
	return []string{
		fmt.Sprintf("%.1f", s.Time),
		fmt.Sprintf("%d", s.FansArrived),
		fmt.Sprintf("%d", s.FansCompleted),
		fmt.Sprintf("%d", s.FansExited),
		fmt.Sprintf("%d", s.FansInStadium),
		fmt.Sprintf("%.4f", s.FillRatio),
		fmt.Sprintf("%.2f", s.ArrivalRate),
		fmt.Sprintf("%.2f", s.CompletionRate),
		fmt.Sprintf("%.2f", s.ExitRate),
		fmt.Sprintf("%.2f", s.NetFlowRate),
		fmt.Sprintf("%d", s.SecurityQueue),
		fmt.Sprintf("%d", s.TurnstileQueue),
		fmt.Sprintf("%d", s.VendorQueue),
		fmt.Sprintf("%d", s.ExitQueue),
		fmt.Sprintf("%.4f", s.SecurityUtilization),
		fmt.Sprintf("%.4f", s.TurnstileUtilization),
		fmt.Sprintf("%.4f", s.VendorUtilization),
		fmt.Sprintf("%.4f", s.ExitUtilization),
		fmt.Sprintf("%.3f", s.AvgSecurityWait),
		fmt.Sprintf("%.3f", s.MaxSecurityWait),
		fmt.Sprintf("%.3f", s.AvgTurnstileWait),
		fmt.Sprintf("%.3f", s.MaxTurnstileWait),
		fmt.Sprintf("%.3f", s.AvgVendorWait),
		fmt.Sprintf("%.3f", s.MaxVendorWait),
		fmt.Sprintf("%.3f", s.AvgExitWait),
		fmt.Sprintf("%.3f", s.MaxExitWait),
		fmt.Sprintf("%.2f", s.ArrivalRateLag1),
		fmt.Sprintf("%.2f", s.ArrivalRateMA5),
		fmt.Sprintf("%d", s.ParkingFree),
	}
}

// WaitStats summarize one stage's wait samples across the whole run.
type WaitStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
}

// rollingWindow is how many past rate/queue values are retained for
// lag and moving-average features.
const rollingWindow = 10

// Collector samples pool and counter state into an append-only
// snapshot series, one per tick. It is just another scheduled process.
type Collector struct {
	interval   float64
	population int

	pools    [numStages]*ResourcePool
	parking  *DepletablePool
	counters *Counters

	prevArrived   int
	prevCompleted int
	prevExited    int
	prevTime      float64

	// Wait samples logged since the previous tick; cleared after each
	// snapshot so wait features are per-interval, not cumulative.
	recent [numStages][]float64

	// Whole-run aggregates for the final summary.
	allCount [numStages]int
	allSum   [numStages]float64
	allMax   [numStages]float64

	rateHistory  []float64
	queueHistory []float64

	snapshots []Snapshot
}

// NewCollector wires a collector to the pools and counters it samples.
func NewCollector(interval float64, population int, security, turnstiles, vendors, exitGates *ResourcePool, parking *DepletablePool, counters *Counters) *Collector {
	return &Collector{
		interval:   interval,
		population: population,
		pools:      [numStages]*ResourcePool{security, turnstiles, vendors, exitGates},
		parking:    parking,
		counters:   counters,
	}
}

// RecordWait logs one measured queue wait at a stage. Samples feed the
// current interval's avg/max features and the run-level summary.
func (c *Collector) RecordWait(stage Stage, w float64) {
	c.recent[stage] = append(c.recent[stage], w)
	c.allCount[stage]++
	c.allSum[stage] += w
	if w > c.allMax[stage] {
		c.allMax[stage] = w
	}
}

// Start schedules the self-perpetuating tick process.
func (c *Collector) Start(s *Scheduler) {
	var tick func()
	tick = func() {
		c.takeSnapshot(s.Now())
		s.Schedule(c.interval, tick)
	}
	s.Schedule(c.interval, tick)
}

func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}

func meanMax(samples []float64) (mean, max float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
		if v > max {
			max = v
		}
	}
	return sum / float64(len(samples)), max
}

func (c *Collector) takeSnapshot(now float64) {
	dt := now - c.prevTime
	if dt <= 0 {
		dt = c.interval
	}

	arrivalRate := float64(c.counters.Arrived-c.prevArrived) / dt
	completionRate := float64(c.counters.Completed-c.prevCompleted) / dt
	exitRate := float64(c.counters.Exited-c.prevExited) / dt

	avgSec, maxSec := meanMax(c.recent[StageSecurity])
	avgTurn, maxTurn := meanMax(c.recent[StageTurnstile])
	avgVend, maxVend := meanMax(c.recent[StageVendor])
	avgExit, maxExit := meanMax(c.recent[StageExit])

	totalEntryQueue := c.pools[StageSecurity].QueueLen() + c.pools[StageTurnstile].QueueLen()
	c.rateHistory = append(c.rateHistory, arrivalRate)
	c.queueHistory = append(c.queueHistory, float64(totalEntryQueue))
	if len(c.rateHistory) > rollingWindow {
		c.rateHistory = c.rateHistory[1:]
		c.queueHistory = c.queueHistory[1:]
	}

	lag1 := 0.0
	if len(c.rateHistory) >= 2 {
		lag1 = c.rateHistory[len(c.rateHistory)-2]
	}
	ma5 := 0.0
	if n := len(c.rateHistory); n > 0 {
		from := n - 5
		if from < 0 {
			from = 0
		}
		sum := 0.0
		for _, v := range c.rateHistory[from:] {
			sum += v
		}
		ma5 = sum / float64(n-from)
	}

	fillRatio := 0.0
	if c.population > 0 {
		fillRatio = float64(c.counters.Completed) / float64(c.population)
	}

	snap := Snapshot{
		Time:          round(now, 1),
		FansArrived:   c.counters.Arrived,
		FansCompleted: c.counters.Completed,
		FansExited:    c.counters.Exited,
		FansInStadium: c.counters.Completed - c.counters.Exited,
		FillRatio:     round(fillRatio, 4),

		ArrivalRate:    round(arrivalRate, 2),
		CompletionRate: round(completionRate, 2),
		ExitRate:       round(exitRate, 2),
		NetFlowRate:    round(arrivalRate-exitRate, 2),

		SecurityQueue:  c.pools[StageSecurity].QueueLen(),
		TurnstileQueue: c.pools[StageTurnstile].QueueLen(),
		VendorQueue:    c.pools[StageVendor].QueueLen(),
		ExitQueue:      c.pools[StageExit].QueueLen(),

		SecurityUtilization:  round(c.pools[StageSecurity].Utilization(), 4),
		TurnstileUtilization: round(c.pools[StageTurnstile].Utilization(), 4),
		VendorUtilization:    round(c.pools[StageVendor].Utilization(), 4),
		ExitUtilization:      round(c.pools[StageExit].Utilization(), 4),

		AvgSecurityWait:  round(avgSec, 3),
		MaxSecurityWait:  round(maxSec, 3),
		AvgTurnstileWait: round(avgTurn, 3),
		MaxTurnstileWait: round(maxTurn, 3),
		AvgVendorWait:    round(avgVend, 3),
		MaxVendorWait:    round(maxVend, 3),
		AvgExitWait:      round(avgExit, 3),
		MaxExitWait:      round(maxExit, 3),

		ArrivalRateLag1: round(lag1, 2),
		ArrivalRateMA5:  round(ma5, 2),
		ParkingFree:     c.parking.Level(),
	}
	c.snapshots = append(c.snapshots, snap)

	c.prevArrived = c.counters.Arrived
	c.prevCompleted = c.counters.Completed
	c.prevExited = c.counters.Exited
	c.prevTime = now

	for i := range c.recent {
		c.recent[i] = c.recent[i][:0]
	}
}

// Snapshots returns the append-only snapshot series.
func (c *Collector) Snapshots() []Snapshot { return c.snapshots }

// Latest returns the most recent snapshot, if any were taken.
func (c *Collector) Latest() (Snapshot, bool) {
	if len(c.snapshots) == 0 {
		return Snapshot{}, false
	}
	return c.snapshots[len(c.snapshots)-1], true
}

// StageStats returns whole-run wait statistics for a stage.
func (c *Collector) StageStats(stage Stage) WaitStats {
	stats := WaitStats{Count: c.allCount[stage], Max: c.allMax[stage]}
	if stats.Count > 0 {
		stats.Mean = c.allSum[stage] / float64(stats.Count)
	}
	return stats
}
