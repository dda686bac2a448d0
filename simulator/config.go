package simulator

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArrivalMode represents the arrival generation strategy
type ArrivalMode int

const (
	ArrivalExponential ArrivalMode = iota // Exponential inter-arrival sampling per fan
	ArrivalBatch                          // Gaussian-distributed count per fixed interval
)

// String returns the string representation of ArrivalMode
func (am ArrivalMode) String() string {
	switch am {
	case ArrivalExponential:
		return "exponential"
	case ArrivalBatch:
		return "batch"
	default:
		return "exponential"
	}
}

// ParseArrivalMode parses a string into ArrivalMode
func ParseArrivalMode(s string) (ArrivalMode, error) {
	switch s {
	case "exponential":
		return ArrivalExponential, nil
	case "batch":
		return ArrivalBatch, nil
	default:
		return ArrivalExponential, fmt.Errorf("invalid arrival mode: %s (must be 'exponential' or 'batch')", s)
	}
}

// MarshalJSON implements json.Marshaler for ArrivalMode
func (am ArrivalMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(am.String())
}

// UnmarshalJSON implements json.Unmarshaler for ArrivalMode
func (am *ArrivalMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseArrivalMode(s)
	if err != nil {
		return err
	}
	*am = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for ArrivalMode
func (am ArrivalMode) MarshalYAML() (interface{}, error) {
	return am.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for ArrivalMode
func (am *ArrivalMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseArrivalMode(s)
	if err != nil {
		return err
	}
	*am = parsed
	return nil
}

// PoolConfig holds one resource pool's initial and maximum capacity.
// The controller resizes within [0, max].
type PoolConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
	Max      int `json:"max" yaml:"max"`
}

// RateSegment is one piece of the arrival rate curve, keyed by minutes
// to kickoff. A segment applies while kickoff - now > MinutesToKickoff;
// segments must be sorted by MinutesToKickoff descending. Times past
// the last segment fall through to ArrivalConfig.TailRatePerMin.
type RateSegment struct {
	MinutesToKickoff float64 `json:"minutesToKickoff" yaml:"minutesToKickoff"`
	RatePerMin       float64 `json:"ratePerMin" yaml:"ratePerMin"`
}

// ArrivalConfig holds arrival generation parameters
type ArrivalConfig struct {
	Mode           ArrivalMode   `json:"mode" yaml:"mode"`
	BatchInterval  float64       `json:"batchInterval" yaml:"batchInterval"` // For batch mode: sampling interval in minutes
	Segments       []RateSegment `json:"segments" yaml:"segments"`
	TailRatePerMin float64       `json:"tailRatePerMin" yaml:"tailRatePerMin"`
}

// ExitChoice is one bucket of the categorical exit-timing distribution:
// with probability Prob the fan leaves at match end plus a uniform
// offset in [MinOffset, MaxOffset] minutes (negative = early leaver).
type ExitChoice struct {
	Prob      float64 `json:"prob" yaml:"prob"`
	MinOffset float64 `json:"minOffset" yaml:"minOffset"`
	MaxOffset float64 `json:"maxOffset" yaml:"maxOffset"`
}

// BehaviorConfig holds the regular fan's branch probabilities and
// service-time distributions. All times in minutes.
type BehaviorConfig struct {
	ParkingProb   float64 `json:"parkingProb" yaml:"parkingProb"`
	ParkingWalk   Dist    `json:"parkingWalk" yaml:"parkingWalk"`
	ParkingReturn Dist    `json:"parkingReturn" yaml:"parkingReturn"`

	SecurityService      Dist    `json:"securityService" yaml:"securityService"`
	SecurityAlarmProb    float64 `json:"securityAlarmProb" yaml:"securityAlarmProb"` // Manual check after a detector alarm
	SecurityAlarmService Dist    `json:"securityAlarmService" yaml:"securityAlarmService"`

	TurnstileService     Dist    `json:"turnstileService" yaml:"turnstileService"`
	TicketFailureProb    float64 `json:"ticketFailureProb" yaml:"ticketFailureProb"` // Scan fails, needs assistance
	TicketFailureService Dist    `json:"ticketFailureService" yaml:"ticketFailureService"`

	ConcourseWalk Dist    `json:"concourseWalk" yaml:"concourseWalk"`
	BathroomProb  float64 `json:"bathroomProb" yaml:"bathroomProb"`
	BathroomTime  Dist    `json:"bathroomTime" yaml:"bathroomTime"`
	MerchProb     float64 `json:"merchProb" yaml:"merchProb"`
	MerchTime     Dist    `json:"merchTime" yaml:"merchTime"`
	VendorProb    float64 `json:"vendorProb" yaml:"vendorProb"`
	VendorService Dist    `json:"vendorService" yaml:"vendorService"`
	SeatFindTime  Dist    `json:"seatFindTime" yaml:"seatFindTime"`

	HalftimeVendorProb    float64 `json:"halftimeVendorProb" yaml:"halftimeVendorProb"`
	HalftimeVendorService Dist    `json:"halftimeVendorService" yaml:"halftimeVendorService"`
	HalftimeBathroomProb  float64 `json:"halftimeBathroomProb" yaml:"halftimeBathroomProb"`
	HalftimeBathroomTime  Dist    `json:"halftimeBathroomTime" yaml:"halftimeBathroomTime"`

	ExitService Dist         `json:"exitService" yaml:"exitService"`
	ExitChoices []ExitChoice `json:"exitChoices" yaml:"exitChoices"`
}

// GroupConfig holds group-arrival behavior. Group members are
// individual fans sharing a group size; shared stages (turnstile,
// vendor) apply ServiceFactor < 1 so total group service time grows
// sub-linearly with size.
type GroupConfig struct {
	Fraction      float64      `json:"fraction" yaml:"fraction"` // Fraction of fans arriving in groups
	SizeMin       int          `json:"sizeMin" yaml:"sizeMin"`
	SizeMax       int          `json:"sizeMax" yaml:"sizeMax"`
	Stagger       float64      `json:"stagger" yaml:"stagger"` // Intra-group spawn stagger, minutes
	ServiceFactor float64      `json:"serviceFactor" yaml:"serviceFactor"`
	ParkingProb   float64      `json:"parkingProb" yaml:"parkingProb"`
	ParkingWalk   Dist         `json:"parkingWalk" yaml:"parkingWalk"`
	VendorProb    float64      `json:"vendorProb" yaml:"vendorProb"`
	VendorService Dist         `json:"vendorService" yaml:"vendorService"`
	BathroomProb  float64      `json:"bathroomProb" yaml:"bathroomProb"`
	ExitChoices   []ExitChoice `json:"exitChoices" yaml:"exitChoices"`
}

// VIPConfig holds VIP fast-track behavior. VIPs wait in the same FIFO
// queues as everyone else; they are fast only through ServiceFactor on
// service times at security, turnstile and exit.
type VIPConfig struct {
	Fraction      float64      `json:"fraction" yaml:"fraction"`
	ServiceFactor float64      `json:"serviceFactor" yaml:"serviceFactor"`
	ParkingWalk   Dist         `json:"parkingWalk" yaml:"parkingWalk"` // Reserved spots, shorter walk
	LoungeProb    float64      `json:"loungeProb" yaml:"loungeProb"`   // Lounge visit replaces the concourse branch
	LoungeTime    Dist         `json:"loungeTime" yaml:"loungeTime"`
	ExitChoices   []ExitChoice `json:"exitChoices" yaml:"exitChoices"`
}

// RiskWeights are the queue/wait/time weights of one risk score.
type RiskWeights struct {
	Queue float64 `json:"queue" yaml:"queue"`
	Wait  float64 `json:"wait" yaml:"wait"`
	Time  float64 `json:"time" yaml:"time"`
}

// ControllerConfig holds the adaptive controller's thresholds and
// capacity increments.
type ControllerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	EntryWeights  RiskWeights `json:"entryWeights" yaml:"entryWeights"`
	ExitWeights   RiskWeights `json:"exitWeights" yaml:"exitWeights"`
	EntryQueueMax float64     `json:"entryQueueMax" yaml:"entryQueueMax"` // Queue length mapping to risk 1.0
	EntryWaitMax  float64     `json:"entryWaitMax" yaml:"entryWaitMax"`   // Wait minutes mapping to risk 1.0
	ExitQueueMax  float64     `json:"exitQueueMax" yaml:"exitQueueMax"`
	ExitWaitMax   float64     `json:"exitWaitMax" yaml:"exitWaitMax"`

	ModerateThreshold float64 `json:"moderateThreshold" yaml:"moderateThreshold"`
	StrongThreshold   float64 `json:"strongThreshold" yaml:"strongThreshold"`

	// Exit dominance: past kickoff+PostHalftimeOffset with at least
	// ExitQueueFloor fans queued at the gates, EXIT wins outright.
	PostHalftimeOffset float64 `json:"postHalftimeOffset" yaml:"postHalftimeOffset"`
	ExitQueueFloor     int     `json:"exitQueueFloor" yaml:"exitQueueFloor"`

	SecurityModerate int `json:"securityModerate" yaml:"securityModerate"` // Extra security lanes per action
	SecurityStrong   int `json:"securityStrong" yaml:"securityStrong"`
	VendorsModerate  int `json:"vendorsModerate" yaml:"vendorsModerate"`
	VendorsStrong    int `json:"vendorsStrong" yaml:"vendorsStrong"`
	ExitsModerate    int `json:"exitsModerate" yaml:"exitsModerate"`
	ExitsStrong      int `json:"exitsStrong" yaml:"exitsStrong"`

	// STRONG entry actions add extra checks at the turnstiles: service
	// factor multiplies by TurnstileThrottle (floor TurnstileFactorMin),
	// and recovers by 0.1 per idle interval.
	TurnstileThrottle  float64 `json:"turnstileThrottle" yaml:"turnstileThrottle"`
	TurnstileFactorMin float64 `json:"turnstileFactorMin" yaml:"turnstileFactorMin"`
}

// DisruptionConfig holds optional operational disruptions: equipment
// malfunctions and staff breaks that temporarily shrink capacity.
type DisruptionConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	MalfunctionInterval Dist `json:"malfunctionInterval" yaml:"malfunctionInterval"`
	MalfunctionMin      int  `json:"malfunctionMin" yaml:"malfunctionMin"` // Turnstiles lost, lower bound
	MalfunctionMax      int  `json:"malfunctionMax" yaml:"malfunctionMax"`
	MalfunctionRepair   Dist `json:"malfunctionRepair" yaml:"malfunctionRepair"`
	TurnstileFloor      int  `json:"turnstileFloor" yaml:"turnstileFloor"`

	BreakEvery    float64 `json:"breakEvery" yaml:"breakEvery"` // Vendor break cadence, minutes
	BreakFraction float64 `json:"breakFraction" yaml:"breakFraction"`
	BreakDuration float64 `json:"breakDuration" yaml:"breakDuration"`
	VendorFloor   int     `json:"vendorFloor" yaml:"vendorFloor"`
}

// SimConfig holds all simulation parameters. Times are virtual minutes
// from stadium open (t=0); kickoff defaults to t=180.
type SimConfig struct {
	Population    int     `json:"population" yaml:"population"`
	KickoffTime   float64 `json:"kickoffTime" yaml:"kickoffTime"`
	MatchDuration float64 `json:"matchDuration" yaml:"matchDuration"` // Kickoff to final whistle, incl. halftime
	HalftimeStart float64 `json:"halftimeStart" yaml:"halftimeStart"` // Offset from kickoff
	HalftimeEnd   float64 `json:"halftimeEnd" yaml:"halftimeEnd"`     // Offset from kickoff
	Horizon       float64 `json:"horizon" yaml:"horizon"`             // Hard simulation cutoff

	TickInterval    float64 `json:"tickInterval" yaml:"tickInterval"` // Metrics snapshot cadence
	ControlInterval float64 `json:"controlInterval" yaml:"controlInterval"`
	RandomSeed      int64   `json:"randomSeed" yaml:"randomSeed"` // 0 = derive from entropy (non-reproducible)

	Security        PoolConfig `json:"security" yaml:"security"`
	Turnstiles      PoolConfig `json:"turnstiles" yaml:"turnstiles"`
	Vendors         PoolConfig `json:"vendors" yaml:"vendors"`
	ExitGates       PoolConfig `json:"exitGates" yaml:"exitGates"`
	ParkingCapacity int        `json:"parkingCapacity" yaml:"parkingCapacity"`

	Arrival     ArrivalConfig    `json:"arrival" yaml:"arrival"`
	Behavior    BehaviorConfig   `json:"behavior" yaml:"behavior"`
	Group       GroupConfig      `json:"group" yaml:"group"`
	VIP         VIPConfig        `json:"vip" yaml:"vip"`
	Controller  ControllerConfig `json:"controller" yaml:"controller"`
	Disruptions DisruptionConfig `json:"disruptions" yaml:"disruptions"`
}

// MatchEnd returns the absolute time of the final whistle.
func (c *SimConfig) MatchEnd() float64 { return c.KickoffTime + c.MatchDuration }

// DefaultConfig returns the baseline match-day configuration: 68,000
// fans, gates open three hours before a t=180 kickoff, horizon long
// enough for the exit wave.
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Population:    68000,
		KickoffTime:   180,
		MatchDuration: 110,
		HalftimeStart: 45,
		HalftimeEnd:   60,
		Horizon:       450,

		TickInterval:    1,
		ControlInterval: 2,
		RandomSeed:      42,

		Security:        PoolConfig{Capacity: 60, Max: 80},
		Turnstiles:      PoolConfig{Capacity: 40, Max: 60},
		Vendors:         PoolConfig{Capacity: 120, Max: 150},
		ExitGates:       PoolConfig{Capacity: 40, Max: 60},
		ParkingCapacity: 6000,

		Arrival: ArrivalConfig{
			Mode:          ArrivalExponential,
			BatchInterval: 1,
			Segments: []RateSegment{
				{MinutesToKickoff: 150, RatePerMin: 150}, // Very early trickle
				{MinutesToKickoff: 120, RatePerMin: 250},
				{MinutesToKickoff: 90, RatePerMin: 350},
				{MinutesToKickoff: 60, RatePerMin: 500}, // Peak rush
				{MinutesToKickoff: 30, RatePerMin: 550},
				{MinutesToKickoff: 0, RatePerMin: 450},
				{MinutesToKickoff: -20, RatePerMin: 25}, // Latecomers
			},
			TailRatePerMin: 2,
		},

		Behavior: BehaviorConfig{
			ParkingProb:   0.40,
			ParkingWalk:   Uniform(2, 6),
			ParkingReturn: Uniform(3, 6),

			SecurityService:      Uniform(0.083, 0.167),
			SecurityAlarmProb:    0.10,
			SecurityAlarmService: Uniform(0.3, 0.6),

			TurnstileService:     Uniform(0.083, 0.125),
			TicketFailureProb:    0.05,
			TicketFailureService: Uniform(0.3, 0.5),

			ConcourseWalk: Uniform(1.5, 4),
			BathroomProb:  0.25,
			BathroomTime:  Uniform(2, 5),
			MerchProb:     0.15,
			MerchTime:     Uniform(3, 8),
			VendorProb:    0.30,
			VendorService: Uniform(0.5, 2.0),
			SeatFindTime:  Uniform(0.5, 2.0),

			HalftimeVendorProb:    0.35,
			HalftimeVendorService: Uniform(1.5, 3.0),
			HalftimeBathroomProb:  0.20,
			HalftimeBathroomTime:  Uniform(3, 6),

			ExitService: Uniform(0.033, 0.067),
			ExitChoices: []ExitChoice{
				{Prob: 0.05, MinOffset: -45, MaxOffset: -30}, // Very early leavers
				{Prob: 0.08, MinOffset: -20, MaxOffset: -10}, // Beat the traffic
				{Prob: 0.67, MinOffset: 0, MaxOffset: 15},    // Final whistle wave
				{Prob: 0.15, MinOffset: 15, MaxOffset: 30},   // Lingerers
				{Prob: 0.05, MinOffset: 30, MaxOffset: 50},   // Stay very late
			},
		},

		Group: GroupConfig{
			Fraction:      0.20,
			SizeMin:       2,
			SizeMax:       5,
			Stagger:       0.02,
			ServiceFactor: 0.8,
			ParkingProb:   0.60,
			ParkingWalk:   Uniform(3, 7),
			VendorProb:    0.70,
			VendorService: Uniform(1.5, 3.0),
			BathroomProb:  0.30,
			ExitChoices: []ExitChoice{
				{Prob: 0.12, MinOffset: -25, MaxOffset: -15}, // Families with kids
				{Prob: 0.63, MinOffset: 0, MaxOffset: 15},
				{Prob: 0.25, MinOffset: 15, MaxOffset: 35},
			},
		},

		VIP: VIPConfig{
			Fraction:      0.05,
			ServiceFactor: 0.5,
			ParkingWalk:   Uniform(1, 2),
			LoungeProb:    0.80,
			LoungeTime:    Uniform(10, 20),
			ExitChoices: []ExitChoice{
				{Prob: 1.0, MinOffset: 5, MaxOffset: 20}, // VIPs stay the full match
			},
		},

		Controller: ControllerConfig{
			Enabled: true,

			EntryWeights:  RiskWeights{Queue: 0.4, Wait: 0.5, Time: 0.1},
			ExitWeights:   RiskWeights{Queue: 0.35, Wait: 0.45, Time: 0.2},
			EntryQueueMax: 5000,
			EntryWaitMax:  10,
			ExitQueueMax:  1500,
			ExitWaitMax:   10,

			ModerateThreshold: 0.5,
			StrongThreshold:   0.7,

			PostHalftimeOffset: 90,
			ExitQueueFloor:     50,

			SecurityModerate: 3,
			SecurityStrong:   5,
			VendorsModerate:  5,
			VendorsStrong:    10,
			ExitsModerate:    5,
			ExitsStrong:      10,

			TurnstileThrottle:  0.9,
			TurnstileFactorMin: 0.5,
		},

		Disruptions: DisruptionConfig{
			Enabled:             false,
			MalfunctionInterval: Uniform(40, 80),
			MalfunctionMin:      1,
			MalfunctionMax:      2,
			MalfunctionRepair:   Uniform(15, 30),
			TurnstileFloor:      10,
			BreakEvery:          60,
			BreakFraction:       0.12,
			BreakDuration:       15,
			VendorFloor:         20,
		},
	}
}

// SmallConfig returns a scaled-down configuration useful for quick
// runs and tests: 2,000 fans through a proportionally smaller stadium.
func SmallConfig() *SimConfig {
	c := DefaultConfig()
	c.Population = 2000
	c.Security = PoolConfig{Capacity: 6, Max: 10}
	c.Turnstiles = PoolConfig{Capacity: 4, Max: 8}
	c.Vendors = PoolConfig{Capacity: 12, Max: 16}
	c.ExitGates = PoolConfig{Capacity: 4, Max: 8}
	c.ParkingCapacity = 400
	for i := range c.Arrival.Segments {
		c.Arrival.Segments[i].RatePerMin *= float64(c.Population) / 68000
	}
	return c
}

func validatePool(name string, p PoolConfig) error {
	if p.Capacity <= 0 {
		return ErrInvalidConfig(fmt.Sprintf("%s capacity must be > 0, got %d", name, p.Capacity))
	}
	if p.Max < p.Capacity {
		return ErrInvalidConfig(fmt.Sprintf("%s max (%d) must be >= capacity (%d)", name, p.Max, p.Capacity))
	}
	return nil
}

// clamp01 clamps a probability into [0, 1]. Out-of-range branch
// probabilities are clamped rather than rejected.
func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (b *BehaviorConfig) clampProbs() {
	b.ParkingProb = clamp01(b.ParkingProb)
	b.SecurityAlarmProb = clamp01(b.SecurityAlarmProb)
	b.TicketFailureProb = clamp01(b.TicketFailureProb)
	b.BathroomProb = clamp01(b.BathroomProb)
	b.MerchProb = clamp01(b.MerchProb)
	b.VendorProb = clamp01(b.VendorProb)
	b.HalftimeVendorProb = clamp01(b.HalftimeVendorProb)
	b.HalftimeBathroomProb = clamp01(b.HalftimeBathroomProb)
}

// Validate checks that configuration values are usable. Probabilities
// are clamped into [0, 1] in place instead of failing.
func (c *SimConfig) Validate() error {
	if c.Population <= 0 {
		return ErrInvalidConfig(fmt.Sprintf("population must be > 0, got %d", c.Population))
	}
	if err := validatePool("security", c.Security); err != nil {
		return err
	}
	if err := validatePool("turnstiles", c.Turnstiles); err != nil {
		return err
	}
	if err := validatePool("vendors", c.Vendors); err != nil {
		return err
	}
	if err := validatePool("exitGates", c.ExitGates); err != nil {
		return err
	}
	if c.ParkingCapacity < 1 {
		// Every parking get is for a single spot; a zero-capacity lot
		// would make that request unsatisfiable forever.
		return ErrInvalidConfig(fmt.Sprintf("parkingCapacity must be >= 1, got %d", c.ParkingCapacity))
	}
	if c.Horizon <= 0 {
		return ErrInvalidConfig("horizon must be > 0")
	}
	if c.TickInterval <= 0 {
		return ErrInvalidConfig("tickInterval must be > 0")
	}
	if c.ControlInterval <= 0 {
		return ErrInvalidConfig("controlInterval must be > 0")
	}
	if c.KickoffTime < 0 {
		return ErrInvalidConfig("kickoffTime must be >= 0")
	}
	if c.MatchDuration <= 0 {
		return ErrInvalidConfig("matchDuration must be > 0")
	}
	if c.HalftimeStart < 0 || c.HalftimeEnd < c.HalftimeStart || c.HalftimeEnd > c.MatchDuration {
		return ErrInvalidConfig("halftime window must satisfy 0 <= start <= end <= matchDuration")
	}
	if c.RandomSeed < 0 {
		return ErrInvalidConfig(fmt.Sprintf("randomSeed must be >= 0, got %d", c.RandomSeed))
	}
	if len(c.Arrival.Segments) == 0 {
		return ErrInvalidConfig("arrival curve needs at least one segment")
	}
	for i := 1; i < len(c.Arrival.Segments); i++ {
		if c.Arrival.Segments[i].MinutesToKickoff >= c.Arrival.Segments[i-1].MinutesToKickoff {
			return ErrInvalidConfig("arrival segments must be sorted by minutesToKickoff descending")
		}
	}
	for _, seg := range c.Arrival.Segments {
		if seg.RatePerMin < 0 {
			return ErrInvalidConfig("arrival rates must be >= 0")
		}
	}
	if c.Arrival.Mode == ArrivalBatch && c.Arrival.BatchInterval <= 0 {
		return ErrInvalidConfig("batchInterval must be > 0 in batch mode")
	}
	if c.Group.SizeMin < 2 || c.Group.SizeMax < c.Group.SizeMin {
		return ErrInvalidConfig("group size range must satisfy 2 <= min <= max")
	}
	if c.Group.Stagger <= 0 {
		// Simultaneous spawns would violate FIFO legality at
		// single-capacity stages.
		return ErrInvalidConfig("group stagger must be > 0")
	}
	if c.Group.ServiceFactor <= 0 || c.VIP.ServiceFactor <= 0 {
		return ErrInvalidConfig("service factors must be > 0")
	}
	if c.VIP.Fraction+c.Group.Fraction > 1 {
		return ErrInvalidConfig("vip.fraction + group.fraction must be <= 1")
	}
	if len(c.Behavior.ExitChoices) == 0 {
		return ErrInvalidConfig("behavior.exitChoices must not be empty")
	}
	for _, d := range []Dist{
		c.Behavior.ParkingWalk, c.Behavior.ParkingReturn,
		c.Behavior.SecurityService, c.Behavior.SecurityAlarmService,
		c.Behavior.TurnstileService, c.Behavior.TicketFailureService,
		c.Behavior.ConcourseWalk, c.Behavior.BathroomTime,
		c.Behavior.MerchTime, c.Behavior.VendorService,
		c.Behavior.SeatFindTime, c.Behavior.HalftimeVendorService,
		c.Behavior.HalftimeBathroomTime, c.Behavior.ExitService,
		c.Group.ParkingWalk, c.Group.VendorService,
		c.VIP.ParkingWalk, c.VIP.LoungeTime,
	} {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	c.Behavior.clampProbs()
	c.Group.Fraction = clamp01(c.Group.Fraction)
	c.Group.ParkingProb = clamp01(c.Group.ParkingProb)
	c.Group.VendorProb = clamp01(c.Group.VendorProb)
	c.Group.BathroomProb = clamp01(c.Group.BathroomProb)
	c.VIP.Fraction = clamp01(c.VIP.Fraction)
	c.VIP.LoungeProb = clamp01(c.VIP.LoungeProb)
	return nil
}

// LoadConfig reads a SimConfig from a YAML or JSON file, starting from
// DefaultConfig so partial files only override what they name.
func LoadConfig(path string) (*SimConfig, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, config); err != nil {
			return config, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, config); err != nil {
			return config, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
