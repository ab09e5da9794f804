package lunohod

import (
	"errors"
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"

	"github.com/kozatem-glitch/Lunohod-I/integrator"
)

const (
	// DefaultHorizon is the duration (s) of the simulated ascent.
	DefaultHorizon = 280.0
	// DefaultCutoff is the end (s) of the first burn.
	DefaultCutoff = 126.0
	// DefaultReignition is the start (s) of the circularization burn.
	DefaultReignition = 245.8
	// DefaultLaunchMass is the lift off mass (kg) of the Lunohod launcher.
	DefaultLaunchMass = 370700.0

	// The integrated mass only reaches the dry mass to within roundoff. In that band, and from just before
	// the burnout, the burnout time decides whether propellant is left.
	burnoutMassε = 1e-6 // kg
	burnoutTimeε = 1e-6 // s
)

// DefaultIntegratorConfig returns the tolerances used for the ascent propagation.
func DefaultIntegratorConfig() integrator.Config {
	conf := integrator.DefaultConfig()
	conf.RelTol, conf.AbsTol = 1e-8, 1e-10
	conf.MaxStep = 0.1
	conf.MaxSteps = 1000000
	return conf
}

/* Handles the ascent propagation. */

// Mission defines an ascent and does the propagation.
type Mission struct {
	Constants  PhysicalConstants
	Atmosphere Atmosphere
	Pitch      PitchProgram
	Staging    StagingSchedule
	Initial    State
	Horizon    float64
	Integrator integrator.Config
	burnout    float64 // Time (s) at which the propellant runs out.
	logger     kitlog.Logger
	metrics    *Metrics
}

// NewMission returns a validated mission from a scenario. Both the logger and the metrics may be nil.
func NewMission(sc Scenario, logger kitlog.Logger, metrics *Metrics) (*Mission, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if err := sc.Constants.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Pitch.Validate(); err != nil {
		return nil, err
	}
	staging, err := NewStagingSchedule(sc.Staging.Cutoff, sc.Staging.Reignition, sc.Constants.Engine())
	if err != nil {
		return nil, err
	}
	if err := sc.Integrator.Validate(); err != nil {
		return nil, err
	}
	if !(sc.Mission.Horizon > 0) || math.IsInf(sc.Mission.Horizon, 0) {
		return nil, fmt.Errorf("mission horizon must be positive and finite, got %g", sc.Mission.Horizon)
	}
	for _, v := range sc.Initial.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("initial state is not finite: %s", sc.Initial)
		}
	}
	if !(sc.Initial.Mass > 0) {
		return nil, fmt.Errorf("initial mass must be positive, got %g kg", sc.Initial.Mass)
	}
	if sc.Initial.Radius() < sc.Constants.Radius*(1-1e-12) {
		return nil, fmt.Errorf("initial position is %.3f m below the surface", sc.Constants.Radius-sc.Initial.Radius())
	}
	return &Mission{
		Constants:  sc.Constants,
		Atmosphere: sc.Constants.Atmosphere(),
		Pitch:      sc.Pitch,
		Staging:    staging,
		Initial:    sc.Initial,
		Horizon:    sc.Mission.Horizon,
		Integrator: sc.Integrator,
		burnout:    staging.Burnout(sc.Initial.Mass, sc.Constants.DryMass, sc.Constants.StandardGravity),
		logger:     kitlog.With(logger, "subsys", "astro"),
		metrics:    metrics,
	}, nil
}

// Forces returns the breakdown of the derivative at mission elapsed time t and state s.
func (a *Mission) Forces(t float64, s State) Forces {
	h := s.Altitude(a.Constants.Radius)
	pitch := a.Pitch.Pitch(h)
	sinP, cosP := math.Sincos(pitch * deg2rad)
	on, thrust := a.Staging.EngineState(t)
	f := Forces{Phase: a.Staging.Phase(t), Pitch: pitch}
	if on {
		f.Thrust = [2]float64{thrust * cosP, thrust * sinP}
		// Guard, not a clamp: thrust keeps accelerating the vehicle at or below the dry mass.
		if a.propellantLeft(t, s.Mass) {
			f.MassFlow = -a.Staging.Engine.MassFlow(thrust, a.Constants.StandardGravity)
		}
	}
	f.Gravity[0], f.Gravity[1] = gravity(a.Constants.Mu, s.X, s.Y)
	f.Density = a.Atmosphere.Density(h)
	f.Drag[0], f.Drag[1] = drag(a.Constants, f.Density, s.VX, s.VY)
	return f
}

// propellantLeft returns whether mass m is above the dry mass at time t.
func (a *Mission) propellantLeft(t, m float64) bool {
	if math.Abs(m-a.Constants.DryMass) <= burnoutMassε && t >= a.burnout-burnoutTimeε {
		return t < a.burnout
	}
	return m > a.Constants.DryMass
}

// stops returns the times at which the derivative is discontinuous.
func (a *Mission) stops() []float64 {
	return append(a.Staging.Boundaries(), a.burnout)
}

// Derivative returns d(state)/dt as [vx, vy, ax, ay, dm/dt].
func (a *Mission) Derivative(t float64, s State) []float64 {
	dy := make([]float64, StateSize)
	a.Func(t, s.Vector(), dy)
	return dy
}

// GetState returns the initial state for the integrator.
func (a *Mission) GetState() []float64 {
	return a.Initial.Vector()
}

// Func is the integration function of the ascent.
func (a *Mission) Func(t float64, y, dy []float64) {
	s := StateFromVector(y)
	f := a.Forces(t, s)
	dy[0] = s.VX
	dy[1] = s.VY
	dy[2], dy[3] = f.Acceleration(s.Mass)
	dy[4] = f.MassFlow
}

// Propagate integrates the ascent from lift off until the horizon.
// A failure to reach the horizon returns an *IntegrationFailure and no trajectory.
func (a *Mission) Propagate() (*Trajectory, error) {
	a.logger.Log("level", "info", "status", "starting", "horizon(s)", a.Horizon, "burnout(s)", a.burnout, "state", a.Initial)
	d, err := integrator.NewDopri5(a.Integrator)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sol, err := d.Integrate(a, 0, a.Horizon, a.stops()...)
	if err != nil {
		a.metrics.observeFailure()
		var failure *integrator.Failure
		if errors.As(err, &failure) {
			a.logger.Log("level", "critical", "status", "failed", "t(s)", failure.T, "h(s)", failure.H, "state", StateFromVector(failure.Y), "err", failure.Err)
			return nil, &IntegrationFailure{Time: failure.T, State: StateFromVector(failure.Y), Err: failure.Err}
		}
		return nil, err
	}
	traj := &Trajectory{sol: sol, radius: a.Constants.Radius}
	a.sanityChecks(traj)
	final := traj.Final()
	a.logger.Log("level", "notice", "status", "finished", "duration", time.Since(start), "steps", sol.Stats.Accepted, "rejected", sol.Stats.Rejected, "evaluations", sol.Stats.Evaluations, "fuel(kg)", a.Initial.Mass-final.Mass)
	a.metrics.observeRun(traj, time.Since(start))
	return traj, nil
}

// sanityChecks logs the staging events and the invariant violations of a trajectory.
func (a *Mission) sanityChecks(traj *Trajectory) {
	for _, tb := range a.Staging.Boundaries() {
		a.logEvent(traj, tb, a.Staging.Phase(math.Nextafter(tb, math.Inf(1))).String())
	}
	a.logEvent(traj, a.burnout, "burnout")
	times := traj.Times()
	for i, s := range traj.States() {
		if s.Radius() < a.Constants.Radius {
			a.logger.Log("level", "critical", "collided", "surface", "t(s)", times[i], "altitude(m)", s.Altitude(a.Constants.Radius))
			break
		}
	}
	if final := traj.Final(); final.Mass < a.Constants.DryMass-massε {
		a.logger.Log("level", "critical", "subsys", "prop", "mass(kg)", final.Mass, "dry(kg)", a.Constants.DryMass)
	}
}

// logEvent logs the state and the osculating orbit at time tm, if it is within the trajectory.
func (a *Mission) logEvent(traj *Trajectory, tm float64, event string) {
	if tm <= traj.Start() || tm > traj.End() {
		return
	}
	s, err := traj.At(tm)
	if err != nil {
		return
	}
	o := NewOrbitFromState(s, a.Constants.Mu)
	a.logger.Log("level", "info", "event", event, "t(s)", tm, "altitude(m)", s.Altitude(a.Constants.Radius), "speed(m/s)", s.Speed(), "mass(kg)", s.Mass, "sma(km)", o.SemiMajorAxis()/1e3, "h(m^2/s)", o.HNorm(), "period", o.Period())
}
