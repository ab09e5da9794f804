package integrator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Dormand-Prince 5(4) tableau (Hairer, Nørsett & Wanner, "Solving ODE I", DOPRI5).
const (
	c2 = 1 / 5.
	c3 = 3 / 10.
	c4 = 4 / 5.
	c5 = 8 / 9.

	a21 = 1 / 5.
	a31 = 3 / 40.
	a32 = 9 / 40.
	a41 = 44 / 45.
	a42 = -56 / 15.
	a43 = 32 / 9.
	a51 = 19372 / 6561.
	a52 = -25360 / 2187.
	a53 = 64448 / 6561.
	a54 = -212 / 729.
	a61 = 9017 / 3168.
	a62 = -355 / 33.
	a63 = 46732 / 5247.
	a64 = 49 / 176.
	a65 = -5103 / 18656.
	a71 = 35 / 384.
	a73 = 500 / 1113.
	a74 = 125 / 192.
	a75 = -2187 / 6784.
	a76 = 11 / 84.

	e1 = 71 / 57600.
	e3 = -71 / 16695.
	e4 = 71 / 1920.
	e5 = -17253 / 339200.
	e6 = 22 / 525.
	e7 = -1 / 40.

	// Continuous extension of order 4.
	d1 = -12715105075 / 11282082432.
	d3 = 87487479700 / 32700410799.
	d4 = -10690763975 / 1880347072.
	d5 = 701980252875 / 199316789632.
	d6 = -1453857185 / 822651844.
	d7 = 69997945 / 29380423.

	safety = 0.9
	facMin = 0.2
	facMax = 10.
)

// Config configures a Dopri5 integrator.
type Config struct {
	RelTol      float64 `mapstructure:"rtol"`         // Relative error tolerance.
	AbsTol      float64 `mapstructure:"atol"`         // Absolute error tolerance.
	MaxStep     float64 `mapstructure:"max_step"`     // Upper bound on the step size, zero means unbounded.
	InitialStep float64 `mapstructure:"initial_step"` // First trial step, zero lets the integrator pick one.
	MinStep     float64 `mapstructure:"min_step"`     // Steps smaller than this abort the integration.
	MaxSteps    int     `mapstructure:"max_steps"`    // Budget of attempted steps (accepted and rejected).
}

// DefaultConfig returns a general purpose configuration.
func DefaultConfig() Config {
	return Config{RelTol: 1e-6, AbsTol: 1e-9, MaxSteps: 100000}
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	switch {
	case c.RelTol <= 0 || math.IsNaN(c.RelTol):
		return fmt.Errorf("integrator: relative tolerance must be positive, got %g", c.RelTol)
	case c.AbsTol <= 0 || math.IsNaN(c.AbsTol):
		return fmt.Errorf("integrator: absolute tolerance must be positive, got %g", c.AbsTol)
	case c.MaxStep < 0:
		return fmt.Errorf("integrator: max step must not be negative, got %g", c.MaxStep)
	case c.InitialStep < 0:
		return fmt.Errorf("integrator: initial step must not be negative, got %g", c.InitialStep)
	case c.MinStep < 0:
		return fmt.Errorf("integrator: min step must not be negative, got %g", c.MinStep)
	case c.MaxSteps <= 0:
		return fmt.Errorf("integrator: step budget must be positive, got %d", c.MaxSteps)
	case c.MaxStep > 0 && c.MinStep > c.MaxStep:
		return fmt.Errorf("integrator: min step %g exceeds max step %g", c.MinStep, c.MaxStep)
	}
	return nil
}

// Dopri5 is an explicit adaptive Runge-Kutta integrator of order 5(4) with dense output.
type Dopri5 struct {
	conf Config
}

// NewDopri5 returns a new Dopri5 integrator.
func NewDopri5(conf Config) (*Dopri5, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Dopri5{conf}, nil
}

func (d *Dopri5) maxStep() float64 {
	if d.conf.MaxStep > 0 {
		return d.conf.MaxStep
	}
	return math.Inf(1)
}

// Integrate integrates the provided Integrable from t0 to t1.
func (d *Dopri5) Integrate(sys Integrable, t0, t1 float64, stops ...float64) (*Solution, error) {
	return d.Solve(sys.Func, t0, t1, sys.GetState(), stops...)
}

// Solve integrates dy/dt = f(t, y) from y(t0) = y0 until t1.
// Steps never straddle any of the provided stop times: each of them is part of the solution grid.
// At a stop, f is only evaluated at the one sided limits, so it may be discontinuous there.
// On failure, no solution is returned, only a *Failure.
func (d *Dopri5) Solve(f Func, t0, t1 float64, y0 []float64, stops ...float64) (*Solution, error) {
	if !(t1 > t0) {
		return nil, fmt.Errorf("integrator: end time %g must be after start time %g", t1, t0)
	}
	if len(y0) == 0 {
		return nil, errors.New("integrator: empty initial state")
	}
	n := len(y0)
	barriers := make([]float64, 0, len(stops)+1)
	for _, s := range stops {
		if s > t0 && s < t1 {
			barriers = append(barriers, s)
		}
	}
	barriers = append(barriers, t1)
	sort.Float64s(barriers)

	y := make([]float64, n)
	copy(y, y0)
	yNew := make([]float64, n)
	tmp := make([]float64, n)
	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	k5 := make([]float64, n)
	k6 := make([]float64, n)
	k7 := make([]float64, n)

	sol := newSolution(t0, y)
	fail := func(t, h float64, err error) (*Solution, error) {
		last := make([]float64, n)
		copy(last, y)
		return nil, &Failure{T: t, Y: last, H: h, Err: err}
	}

	f(t0, y, k1)
	sol.Stats.Evaluations++
	if !finite(k1) || !finite(y) {
		return fail(t0, 0, ErrNonFinite)
	}

	hMax := d.maxStep()
	h := d.conf.InitialStep
	if h == 0 {
		h = d.initialStep(f, t0, y, k1, tmp, k2, barriers[0]-t0)
		sol.Stats.Evaluations++
	}
	h = math.Min(h, hMax)

	t := t0
	bIdx := 0
	maxFac := facMax
	for attempts := 0; ; attempts++ {
		for bIdx < len(barriers)-1 && barriers[bIdx] <= t {
			bIdx++
		}
		barrier := barriers[bIdx]
		if t >= t1 {
			break
		}
		if attempts >= d.conf.MaxSteps {
			return fail(t, h, ErrStepBudget)
		}
		landing := false
		if rest := barrier - t; h >= rest || (1.01*h >= rest && rest <= hMax) {
			h = rest
			landing = true
		}
		if h <= d.conf.MinStep || t+h == t {
			return fail(t, h, ErrStepTooSmall)
		}

		for i := range tmp {
			tmp[i] = y[i] + h*a21*k1[i]
		}
		f(t+c2*h, tmp, k2)
		for i := range tmp {
			tmp[i] = y[i] + h*(a31*k1[i]+a32*k2[i])
		}
		f(t+c3*h, tmp, k3)
		for i := range tmp {
			tmp[i] = y[i] + h*(a41*k1[i]+a42*k2[i]+a43*k3[i])
		}
		f(t+c4*h, tmp, k4)
		for i := range tmp {
			tmp[i] = y[i] + h*(a51*k1[i]+a52*k2[i]+a53*k3[i]+a54*k4[i])
		}
		f(t+c5*h, tmp, k5)
		for i := range tmp {
			tmp[i] = y[i] + h*(a61*k1[i]+a62*k2[i]+a63*k3[i]+a64*k4[i]+a65*k5[i])
		}
		tNew, tEnd := t+h, t+h
		if landing {
			// Left limit: f may be discontinuous at a stop.
			tNew, tEnd = barrier, math.Nextafter(barrier, t0)
		}
		f(tEnd, tmp, k6)
		for i := range yNew {
			yNew[i] = y[i] + h*(a71*k1[i]+a73*k3[i]+a74*k4[i]+a75*k5[i]+a76*k6[i])
		}
		f(tEnd, yNew, k7)
		sol.Stats.Evaluations += 6
		if !finite(k2) || !finite(k3) || !finite(k4) || !finite(k5) || !finite(k6) || !finite(k7) || !finite(yNew) {
			return fail(t, h, ErrNonFinite)
		}

		var sum float64
		for i := range tmp {
			sk := d.conf.AbsTol + d.conf.RelTol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
			errI := h * (e1*k1[i] + e3*k3[i] + e4*k4[i] + e5*k5[i] + e6*k6[i] + e7*k7[i]) / sk
			sum += errI * errI
		}
		errNorm := math.Sqrt(sum / float64(n))

		if errNorm <= 1 {
			sol.Stats.Accepted++
			sol.push(h, tNew, y, yNew, k1, k3, k4, k5, k6, k7)
			t = tNew
			y, yNew = yNew, y
			k1, k7 = k7, k1
			if landing && t < t1 {
				// Right limit for the next step instead of the last stage.
				f(math.Nextafter(t, t1), y, k1)
				sol.Stats.Evaluations++
				if !finite(k1) {
					return fail(t, h, ErrNonFinite)
				}
			}
			fac := maxFac
			if errNorm > 0 {
				fac = math.Min(maxFac, math.Max(facMin, safety*math.Pow(errNorm, -0.2)))
			}
			h = math.Min(h*fac, hMax)
			maxFac = facMax
			continue
		}
		sol.Stats.Rejected++
		h *= math.Max(facMin, safety*math.Pow(errNorm, -0.2))
		maxFac = 1
	}
	return sol, nil
}

// initialStep guesses the first step size following Hairer's hinit.
// It uses f1 and yTmp as scratch space.
func (d *Dopri5) initialStep(f Func, t0 float64, y0, f0, yTmp, f1 []float64, span float64) float64 {
	var dnf, dny float64
	for i := range y0 {
		sk := d.conf.AbsTol + d.conf.RelTol*math.Abs(y0[i])
		dnf += (f0[i] / sk) * (f0[i] / sk)
		dny += (y0[i] / sk) * (y0[i] / sk)
	}
	h := 1e-6
	if dnf > 1e-10 && dny > 1e-10 {
		h = 0.01 * math.Sqrt(dny/dnf)
	}
	h = math.Min(math.Min(h, d.maxStep()), span)
	floats.AddScaledTo(yTmp, y0, h, f0)
	f(t0+h, yTmp, f1)
	var der2 float64
	for i := range y0 {
		sk := d.conf.AbsTol + d.conf.RelTol*math.Abs(y0[i])
		der2 += ((f1[i] - f0[i]) / sk) * ((f1[i] - f0[i]) / sk)
	}
	der2 = math.Sqrt(der2) / h
	der12 := math.Max(math.Abs(der2), math.Sqrt(dnf))
	h1 := math.Max(1e-6, h*1e-3)
	if der12 > 1e-15 {
		h1 = math.Pow(0.01/der12, 0.2)
	}
	return math.Min(math.Min(100*h, h1), math.Min(d.maxStep(), span))
}

func finite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
