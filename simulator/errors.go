package simulator

import (
	"errors"
	"fmt"
)

// ErrPredictionUnavailable is returned by RiskPredictor implementations
// that cannot score a snapshot (model offline, feature gap). The
// controller falls back to its built-in heuristic for that decision.
var ErrPredictionUnavailable = errors.New("risk prediction unavailable")

// SimError is a custom error type for simulation errors
type SimError struct {
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("simulation error: %s", e.Message)
}

// ErrInvalidConfig creates an error for invalid configuration
func ErrInvalidConfig(msg string) error {
	return SimError{Message: fmt.Sprintf("invalid config: %s", msg)}
}

// ErrStarvation creates an error for a depletable-pool request that
// exceeds the pool's total capacity and therefore can never complete.
// Configuration-class: surfaced before the run starts.
func ErrStarvation(pool string, requested, capacity int) error {
	return SimError{Message: fmt.Sprintf("starvation: pool %q get(%d) exceeds capacity %d", pool, requested, capacity)}
}
