package lunohod

import (
	"errors"
	"fmt"
	"math"
)

/* Open-loop ascent program: pitch as a function of altitude and engine phases as a function of time.
Both are stateless so that the integrator may evaluate them at any trial time, in any order. */

// Phase defines an enum of staging phases.
type Phase uint8

const (
	// Boost1 is the first burn, from lift off to the main engine cut off.
	Boost1 Phase = iota + 1
	// Coast is the unpowered climb to apoapsis.
	Coast
	// Boost2 is the circularization burn.
	Boost2
)

func (p Phase) String() string {
	switch p {
	case Boost1:
		return "boost1"
	case Coast:
		return "coast"
	case Boost2:
		return "boost2"
	}
	panic("cannot stringify unknown phase")
}

// Thrusting returns whether the engine is lit during this phase.
func (p Phase) Thrusting() bool {
	return p == Boost1 || p == Boost2
}

// StagingSchedule switches the engine off at Cutoff and back on at Reignition.
type StagingSchedule struct {
	Cutoff     float64 `mapstructure:"cutoff"`     // End of the first burn (s), included in Boost1.
	Reignition float64 `mapstructure:"reignition"` // Start of the second burn (s), included in Boost2.
	Engine     Engine  `mapstructure:"-"`
}

// NewStagingSchedule returns the schedule for the provided engine.
func NewStagingSchedule(cutoff, reignition float64, engine Engine) (StagingSchedule, error) {
	s := StagingSchedule{Cutoff: cutoff, Reignition: reignition, Engine: engine}
	return s, s.Validate()
}

// Validate returns an error if the transitions are not in order.
func (s StagingSchedule) Validate() error {
	if s.Cutoff < 0 || math.IsNaN(s.Cutoff) {
		return fmt.Errorf("staging cutoff must not be negative, got %g", s.Cutoff)
	}
	if !(s.Reignition > s.Cutoff) {
		return fmt.Errorf("staging reignition (%g s) must be after the cutoff (%g s)", s.Reignition, s.Cutoff)
	}
	return s.Engine.Validate()
}

// Phase returns the staging phase at mission elapsed time t.
func (s StagingSchedule) Phase(t float64) Phase {
	switch {
	case t <= s.Cutoff:
		return Boost1
	case t < s.Reignition:
		return Coast
	default:
		return Boost2
	}
}

// EngineState returns whether the engine is on at time t and the thrust it produces (N).
func (s StagingSchedule) EngineState(t float64) (on bool, thrust float64) {
	if s.Phase(t).Thrusting() {
		return true, s.Engine.Thrust
	}
	return false, 0
}

// Burnout returns when the engine runs out of the propellant between the masses m0 and dry.
// Coasting does not consume propellant; the second burn lasts until the end of the mission.
func (s StagingSchedule) Burnout(m0, dry, g0 float64) float64 {
	burn := s.Engine.BurnTime(m0, dry, g0)
	if burn <= s.Cutoff {
		return burn
	}
	return s.Reignition + (burn - s.Cutoff)
}

// Boundaries returns the transition times.
func (s StagingSchedule) Boundaries() []float64 {
	return []float64{s.Cutoff, s.Reignition}
}

// PitchBreakpoint is a node of the pitch program.
type PitchBreakpoint struct {
	Altitude float64 `mapstructure:"altitude"` // m
	Pitch    float64 `mapstructure:"pitch"`    // degrees above the local horizontal
}

// PitchProgram is a piecewise-linear pitch schedule over altitude.
// Below the first breakpoint the first pitch is held, above the last one the last pitch is held.
type PitchProgram []PitchBreakpoint

// DefaultPitchProgram returns the vertical rise, gravity turn and flattening of the Lunohod ascent.
func DefaultPitchProgram() PitchProgram {
	return PitchProgram{
		{Altitude: 10000, Pitch: 90},
		{Altitude: 20000, Pitch: 30},
		{Altitude: 70000, Pitch: 0},
	}
}

// Validate returns an error if the program is empty or its altitudes are not strictly increasing.
func (p PitchProgram) Validate() error {
	if len(p) == 0 {
		return errors.New("pitch program has no breakpoint")
	}
	for i, bp := range p {
		if math.IsNaN(bp.Altitude) || math.IsNaN(bp.Pitch) {
			return fmt.Errorf("pitch breakpoint #%d is not a number", i)
		}
		if bp.Pitch < -90 || bp.Pitch > 90 {
			return fmt.Errorf("pitch breakpoint #%d: pitch %g° out of [-90°, 90°]", i, bp.Pitch)
		}
		if i > 0 && bp.Altitude <= p[i-1].Altitude {
			return fmt.Errorf("pitch breakpoint #%d: altitude %g m is not above %g m", i, bp.Altitude, p[i-1].Altitude)
		}
	}
	return nil
}

// Pitch returns the commanded pitch in degrees at altitude h.
func (p PitchProgram) Pitch(h float64) float64 {
	if h <= p[0].Altitude {
		return p[0].Pitch
	}
	for i := 1; i < len(p); i++ {
		if h <= p[i].Altitude {
			return lerp(h, p[i-1].Altitude, p[i-1].Pitch, p[i].Altitude, p[i].Pitch)
		}
	}
	return p[len(p)-1].Pitch
}
