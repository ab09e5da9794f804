package integrator

import (
	"errors"
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func decay(t float64, y, dy []float64) {
	dy[0] = -y[0]
}

func oscillator(t float64, y, dy []float64) {
	dy[0] = y[1]
	dy[1] = -y[0]
}

func TestDopri5Decay(t *testing.T) {
	conf := Config{RelTol: 1e-10, AbsTol: 1e-12, MaxSteps: 100000}
	d, err := NewDopri5(conf)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := d.Solve(decay, 0, 5, []float64{1})
	if err != nil {
		t.Fatalf("integration failed: %s", err)
	}
	if sol.End() != 5 {
		t.Fatalf("solution ends at %f instead of 5", sol.End())
	}
	if got := sol.Y[sol.Len()-1][0]; !scalar.EqualWithinAbs(got, math.Exp(-5), 1e-8) {
		t.Fatalf("y(5)=%.12f expected %.12f", got, math.Exp(-5))
	}
	if sol.Stats.Accepted != sol.Len()-1 {
		t.Fatalf("accepted steps %d do not match the grid (%d points)", sol.Stats.Accepted, sol.Len())
	}
	if sol.Stats.Evaluations < 6*sol.Stats.Accepted {
		t.Fatalf("too few evaluations: %+v", sol.Stats)
	}
}

func TestDopri5DenseOutput(t *testing.T) {
	conf := Config{RelTol: 1e-9, AbsTol: 1e-12, MaxStep: 0.1, MaxSteps: 100000}
	d, _ := NewDopri5(conf)
	sol, err := d.Solve(oscillator, 0, 10, []float64{0, 1})
	if err != nil {
		t.Fatalf("integration failed: %s", err)
	}
	for ti := 0.0; ti <= 10; ti += 0.037 {
		y, err := sol.At(ti)
		if err != nil {
			t.Fatalf("At(%f): %s", ti, err)
		}
		if !scalar.EqualWithinAbs(y[0], math.Sin(ti), 1e-6) || !scalar.EqualWithinAbs(y[1], math.Cos(ti), 1e-6) {
			t.Fatalf("dense output at t=%f: %v, expected [%f %f]", ti, y, math.Sin(ti), math.Cos(ti))
		}
	}
	// On the grid the interpolant must return the accepted state itself.
	for i, ti := range sol.T {
		y, _ := sol.At(ti)
		if !floats.Equal(y, sol.Y[i]) {
			t.Fatalf("dense output differs from the grid at t=%f", ti)
		}
	}
	if _, err := sol.At(10.5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := sol.At(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestDopri5MaxStepAndStops(t *testing.T) {
	conf := Config{RelTol: 1e-6, AbsTol: 1e-9, MaxStep: 0.05, MaxSteps: 100000}
	d, _ := NewDopri5(conf)
	stops := []float64{1.7, 0.3, -2, 42} // Out of range stops are ignored.
	sol, err := d.Solve(oscillator, 0, 3, []float64{0, 1}, stops...)
	if err != nil {
		t.Fatalf("integration failed: %s", err)
	}
	for i := 1; i < sol.Len(); i++ {
		if h := sol.T[i] - sol.T[i-1]; h <= 0 || h > conf.MaxStep+1e-12 {
			t.Fatalf("step %d of size %g violates the max step %g", i, h, conf.MaxStep)
		}
	}
	for _, stop := range []float64{0.3, 1.7} {
		idx := sort.SearchFloat64s(sol.T, stop)
		if idx == sol.Len() || sol.T[idx] != stop {
			t.Fatalf("stop %f is not part of the solution grid", stop)
		}
	}
}

func TestDopri5StepBudget(t *testing.T) {
	conf := Config{RelTol: 1e-6, AbsTol: 1e-9, MaxStep: 0.1, MaxSteps: 5}
	d, _ := NewDopri5(conf)
	sol, err := d.Solve(decay, 0, 100, []float64{1})
	if sol != nil {
		t.Fatal("a failed integration must not return a partial solution")
	}
	if !errors.Is(err, ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected a *Failure, got %T", err)
	}
	if failure.T <= 0 || failure.T >= 100 {
		t.Fatalf("failure time %f out of the expected interval", failure.T)
	}
	if len(failure.Y) != 1 || failure.Y[0] >= 1 || failure.Y[0] <= 0 {
		t.Fatalf("unexpected failure state %v", failure.Y)
	}
}

func TestDopri5NonFinite(t *testing.T) {
	conf := Config{RelTol: 1e-6, AbsTol: 1e-9, MaxStep: 0.1, MaxSteps: 1000}
	d, _ := NewDopri5(conf)
	blowup := func(t float64, y, dy []float64) {
		dy[0] = 1
		if t > 1 {
			dy[0] = math.NaN()
		}
	}
	_, err := d.Solve(blowup, 0, 2, []float64{0})
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	var failure *Failure
	errors.As(err, &failure)
	if failure.T > 1 {
		t.Fatalf("failure reported after the blow up: t=%f", failure.T)
	}
	if !scalar.EqualWithinAbs(failure.Y[0], failure.T, 1e-9) {
		t.Fatalf("failure state %v does not match the last accepted time %f", failure.Y, failure.T)
	}
}

type decaySystem struct{ y0 float64 }

func (s decaySystem) GetState() []float64 { return []float64{s.y0} }

func (s decaySystem) Func(t float64, y, dy []float64) { decay(t, y, dy) }

func TestDopri5Integrable(t *testing.T) {
	d, _ := NewDopri5(DefaultConfig())
	sol, err := d.Integrate(decaySystem{2}, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := sol.Y[sol.Len()-1][0]; !scalar.EqualWithinRel(got, 2*math.Exp(-1), 1e-5) {
		t.Fatalf("y(1)=%f expected %f", got, 2*math.Exp(-1))
	}
}

func TestConfigValidate(t *testing.T) {
	for i, conf := range []Config{
		{RelTol: 0, AbsTol: 1, MaxSteps: 1},
		{RelTol: 1, AbsTol: -1, MaxSteps: 1},
		{RelTol: 1, AbsTol: 1, MaxStep: -1, MaxSteps: 1},
		{RelTol: 1, AbsTol: 1, InitialStep: -1, MaxSteps: 1},
		{RelTol: 1, AbsTol: 1, MinStep: -1, MaxSteps: 1},
		{RelTol: 1, AbsTol: 1, MaxSteps: 0},
		{RelTol: 1, AbsTol: 1, MaxStep: 0.1, MinStep: 1, MaxSteps: 1},
		{RelTol: math.NaN(), AbsTol: 1, MaxSteps: 1},
	} {
		if _, err := NewDopri5(conf); err == nil {
			t.Fatalf("config #%d should be invalid: %+v", i, conf)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config is invalid: %s", err)
	}
	d, _ := NewDopri5(DefaultConfig())
	if _, err := d.Solve(decay, 1, 1, []float64{1}); err == nil {
		t.Fatal("empty interval should fail")
	}
	if _, err := d.Solve(decay, 0, 1, nil); err == nil {
		t.Fatal("empty state should fail")
	}
}

func TestDopri5DiscontinuousAtStop(t *testing.T) {
	// Unit rate until t=1 included, then nothing.
	step := func(t float64, y, dy []float64) {
		dy[0] = 0
		if t <= 1 {
			dy[0] = 1
		}
	}
	d, err := NewDopri5(Config{RelTol: 1e-10, AbsTol: 1e-12, MaxStep: 0.25, MaxSteps: 1000})
	if err != nil {
		t.Fatal(err)
	}
	sol, err := d.Solve(step, 0, 2, []float64{0}, 1)
	if err != nil {
		t.Fatalf("integration failed: %s", err)
	}
	if sol.Stats.Rejected != 0 {
		t.Fatalf("%d steps rejected across the stop", sol.Stats.Rejected)
	}
	for i, tm := range sol.T {
		exp := math.Min(tm, 1)
		if !scalar.EqualWithinAbs(sol.Y[i][0], exp, 1e-12) {
			t.Fatalf("y(%f)=%.15f expected %.15f", tm, sol.Y[i][0], exp)
		}
	}
	y, err := sol.At(1.5)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(y[0], 1, 1e-12) {
		t.Fatalf("dense output after the stop is %.15f", y[0])
	}
}
