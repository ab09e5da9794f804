package integrator

import (
	"errors"
	"fmt"
)

// Func is an ODE right hand side: it writes dy/dt at (t, y) into dy.
// Implementations must not retain y nor dy.
type Func func(t float64, y, dy []float64)

// Integrable defines something which can be integrated, i.e. has a state vector and its derivative.
type Integrable interface {
	GetState() []float64             // Initial state of this integrable.
	Func(t float64, y, dy []float64) // ODE function from time t and state y.
}

var (
	// ErrStepBudget is returned when the step budget is exhausted before reaching the end time.
	ErrStepBudget = errors.New("integrator: step budget exhausted")
	// ErrStepTooSmall is returned when the step size underflows the minimum step.
	ErrStepTooSmall = errors.New("integrator: step size too small")
	// ErrNonFinite is returned when the derivative or the state contains a NaN or an Inf.
	ErrNonFinite = errors.New("integrator: non finite state or derivative")
	// ErrOutOfRange is returned when the dense output is queried outside of the integrated interval.
	ErrOutOfRange = errors.New("integrator: time out of integrated interval")
)

// Failure reports where an integration stopped.
type Failure struct {
	T   float64   // Time of the last accepted state.
	Y   []float64 // Last accepted state.
	H   float64   // Step size which was attempted.
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s at t=%.6f (h=%g) y=%v", f.Err, f.T, f.H, f.Y)
}

// Unwrap returns the cause of the failure.
func (f *Failure) Unwrap() error {
	return f.Err
}
