package lunohod

import (
	"fmt"
	"math"

	"github.com/kozatem-glitch/Lunohod-I/integrator"
)

// massε is the tolerance (kg) on the dry mass floor.
const massε = 1.0

// Trajectory is a propagated ascent: the accepted integration steps and the dense output between them.
// It is never modified once returned by Propagate.
type Trajectory struct {
	sol    *integrator.Solution
	radius float64
}

// Start returns the first mission elapsed time of the trajectory.
func (t *Trajectory) Start() float64 {
	return t.sol.Start()
}

// End returns the last mission elapsed time of the trajectory.
func (t *Trajectory) End() float64 {
	return t.sol.End()
}

// Len returns the number of states on the solver grid.
func (t *Trajectory) Len() int {
	return t.sol.Len()
}

// Stats returns the work done by the integrator.
func (t *Trajectory) Stats() integrator.Stats {
	return t.sol.Stats
}

// Times returns a copy of the solver grid.
func (t *Trajectory) Times() []float64 {
	times := make([]float64, len(t.sol.T))
	copy(times, t.sol.T)
	return times
}

// States returns the states on the solver grid.
func (t *Trajectory) States() []State {
	states := make([]State, len(t.sol.Y))
	for i, y := range t.sol.Y {
		states[i] = StateFromVector(y)
	}
	return states
}

// Final returns the state at the horizon.
func (t *Trajectory) Final() State {
	return StateFromVector(t.sol.Y[len(t.sol.Y)-1])
}

// At returns the interpolated state at mission elapsed time tm.
func (t *Trajectory) At(tm float64) (State, error) {
	y, err := t.sol.At(tm)
	if err != nil {
		return State{}, fmt.Errorf("state at %g s: %w", tm, err)
	}
	return StateFromVector(y), nil
}

// altitudeAt returns the interpolated altitude, or -Inf outside of the trajectory.
func (t *Trajectory) altitudeAt(tm float64) float64 {
	s, err := t.At(tm)
	if err != nil {
		return math.Inf(-1)
	}
	return s.Altitude(t.radius)
}

// speedAt returns the interpolated speed, or -Inf outside of the trajectory.
func (t *Trajectory) speedAt(tm float64) float64 {
	s, err := t.At(tm)
	if err != nil {
		return math.Inf(-1)
	}
	return s.Speed()
}

// DerivedSeries are the observables of a trajectory on its solver grid.
type DerivedSeries struct {
	Time     []float64 // s
	Altitude []float64 // m
	Speed    []float64 // m/s
	Mass     []float64 // kg
}

// Derive returns the altitude, speed and mass on the solver grid of a trajectory.
func Derive(traj *Trajectory) DerivedSeries {
	n := traj.Len()
	d := DerivedSeries{
		Time:     traj.Times(),
		Altitude: make([]float64, n),
		Speed:    make([]float64, n),
		Mass:     make([]float64, n),
	}
	for i, s := range traj.States() {
		d.Altitude[i] = s.Altitude(traj.radius)
		d.Speed[i] = s.Speed()
		d.Mass[i] = s.Mass
	}
	return d
}

// Telemetry samples a trajectory every step seconds, and at its end, in the schema of the flight recordings.
func (a *Mission) Telemetry(traj *Trajectory, step float64) (ReferenceTrace, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("telemetry step must be positive, got %g", step)
	}
	var trace ReferenceTrace
	end := traj.End()
	for i := 0; ; i++ {
		tm := traj.Start() + float64(i)*step
		if tm > end {
			tm = end
		}
		s, err := traj.At(tm)
		if err != nil {
			return nil, err
		}
		trace = append(trace, a.sample(tm, s))
		if tm == end {
			break
		}
	}
	return trace, nil
}

// sample returns the telemetry of state s at mission elapsed time t.
func (a *Mission) sample(t float64, s State) ReferenceSample {
	h := s.Altitude(a.Constants.Radius)
	apo, peri := NewOrbitFromState(s, a.Constants.Mu).ApsidesAltitudes(a.Constants.Radius)
	throttle := 0.0
	if on, _ := a.Staging.EngineState(t); on {
		throttle = 1
	}
	return ReferenceSample{
		Time:            t,
		Altitude:        h,
		Apoapsis:        apo,
		Periapsis:       peri,
		Speed:           s.Speed(),
		Pitch:           a.Pitch.Pitch(h),
		Throttle:        throttle,
		Mass:            s.Mass,
		DynamicPressure: a.Atmosphere.DynamicPressure(h, s.Speed()),
	}
}
