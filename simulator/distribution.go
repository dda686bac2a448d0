package simulator

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// DistType represents the family of a service-time distribution
type DistType int

const (
	DistUniform DistType = iota
	DistNormal
	DistExponential
	DistFixed
)

// String returns the string representation of DistType
func (dt DistType) String() string {
	switch dt {
	case DistUniform:
		return "uniform"
	case DistNormal:
		return "normal"
	case DistExponential:
		return "exponential"
	case DistFixed:
		return "fixed"
	default:
		return fmt.Sprintf("unknown(%d)", int(dt))
	}
}

// ParseDistType parses a string into a DistType
func ParseDistType(s string) (DistType, error) {
	switch s {
	case "uniform":
		return DistUniform, nil
	case "normal":
		return DistNormal, nil
	case "exponential":
		return DistExponential, nil
	case "fixed":
		return DistFixed, nil
	default:
		return DistUniform, fmt.Errorf("invalid DistType: %s (must be 'uniform', 'normal', 'exponential', or 'fixed')", s)
	}
}

// MarshalJSON implements json.Marshaler for DistType
func (dt DistType) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

// UnmarshalJSON implements json.Unmarshaler for DistType
func (dt *DistType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDistType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for DistType
func (dt DistType) MarshalYAML() (interface{}, error) {
	return dt.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for DistType
func (dt *DistType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDistType(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Dist describes a duration distribution in minutes. Which fields are
// meaningful depends on Type:
//
//	uniform:     Min, Max
//	normal:      Mean, StdDev (samples clamped at zero)
//	exponential: Mean
//	fixed:       Value
type Dist struct {
	Type   DistType `json:"type" yaml:"type"`
	Min    float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Mean   float64  `json:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev float64  `json:"stdDev,omitempty" yaml:"stdDev,omitempty"`
	Value  float64  `json:"value,omitempty" yaml:"value,omitempty"`
}

// Uniform is shorthand for a uniform Dist on [min, max].
func Uniform(min, max float64) Dist {
	return Dist{Type: DistUniform, Min: min, Max: max}
}

// Fixed is shorthand for a degenerate Dist that always yields v.
func Fixed(v float64) Dist {
	return Dist{Type: DistFixed, Value: v}
}

// Sample draws one duration. Never negative.
func (d Dist) Sample(rng *rand.Rand) float64 {
	var v float64
	switch d.Type {
	case DistUniform:
		if d.Max <= d.Min {
			v = d.Min
		} else {
			v = d.Min + rng.Float64()*(d.Max-d.Min)
		}
	case DistNormal:
		v = d.Mean + rng.NormFloat64()*d.StdDev
	case DistExponential:
		v = rng.ExpFloat64() * d.Mean
	case DistFixed:
		v = d.Value
	default:
		v = 0
	}
	if v < 0 {
		return 0
	}
	return v
}

// Validate reports nonsensical parameter combinations.
func (d Dist) Validate() error {
	switch d.Type {
	case DistUniform:
		if d.Min < 0 || d.Max < d.Min {
			return ErrInvalidConfig(fmt.Sprintf("uniform dist requires 0 <= min <= max, got [%g, %g]", d.Min, d.Max))
		}
	case DistNormal:
		if d.StdDev < 0 {
			return ErrInvalidConfig(fmt.Sprintf("normal dist requires stdDev >= 0, got %g", d.StdDev))
		}
	case DistExponential:
		if d.Mean < 0 {
			return ErrInvalidConfig(fmt.Sprintf("exponential dist requires mean >= 0, got %g", d.Mean))
		}
	case DistFixed:
		if d.Value < 0 {
			return ErrInvalidConfig(fmt.Sprintf("fixed dist requires value >= 0, got %g", d.Value))
		}
	}
	return nil
}
