package lunohod

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldCount is the cause of a MalformedRecord which does not have one field per telemetry channel.
	ErrFieldCount = errors.New("wrong number of fields")
	// ErrTimeOrder is the cause of a MalformedRecord whose time is before the previous record's.
	ErrTimeOrder = errors.New("time goes backwards")
)

// IntegrationFailure is returned when an ascent could not be propagated until the horizon.
// No partial trajectory is returned with it.
type IntegrationFailure struct {
	Time  float64 // Mission elapsed time of the last accepted state (s)
	State State   // Last accepted state
	Err   error
}

func (e *IntegrationFailure) Error() string {
	return fmt.Sprintf("integration failed at t=%.6f s (%s): %s", e.Time, e.State, e.Err)
}

// Unwrap returns the integrator error which stopped the propagation.
func (e *IntegrationFailure) Unwrap() error {
	return e.Err
}

// MalformedRecord is a telemetry row which was skipped by the loader.
type MalformedRecord struct {
	Line   int    // 1-based line number, header included
	Record string // Raw fields joined by commas
	Err    error
}

func (e MalformedRecord) Error() string {
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Err, e.Record)
}

// Unwrap returns the parse error.
func (e MalformedRecord) Unwrap() error {
	return e.Err
}
