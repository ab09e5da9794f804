package lunohod

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestPitchProgramBreakpoints(t *testing.T) {
	p := DefaultPitchProgram()
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		h, pitch float64
	}{
		{-10, 90}, {0, 90}, {10000, 90}, {15000, 60}, {20000, 30}, {45000, 15}, {70000, 0}, {70001, 0}, {1e6, 0},
	} {
		if got := p.Pitch(tc.h); !scalar.EqualWithinAbs(got, tc.pitch, 1e-12) {
			t.Fatalf("pitch(%f)=%f expected %f", tc.h, got, tc.pitch)
		}
	}
	// Continuity on both sides of the breakpoints.
	for _, bp := range p {
		for _, δ := range []float64{-1e-6, 1e-6} {
			if got := p.Pitch(bp.Altitude + δ); !scalar.EqualWithinAbs(got, bp.Pitch, 1e-6) {
				t.Fatalf("pitch is discontinuous at %f m: %f", bp.Altitude, got)
			}
		}
	}
}

func TestPitchProgramMonotonic(t *testing.T) {
	p := DefaultPitchProgram()
	prev := p.Pitch(0)
	for h := 0.0; h <= 70000; h += 0.5 {
		pitch := p.Pitch(h)
		if pitch > prev {
			t.Fatalf("pitch increases at %f m: %f > %f", h, pitch, prev)
		}
		prev = pitch
	}
}

func TestPitchProgramValidate(t *testing.T) {
	for name, p := range map[string]PitchProgram{
		"empty":       {},
		"unordered":   {{Altitude: 20000, Pitch: 30}, {Altitude: 10000, Pitch: 90}},
		"duplicate":   {{Altitude: 10000, Pitch: 90}, {Altitude: 10000, Pitch: 30}},
		"out of span": {{Altitude: 10000, Pitch: 120}},
	} {
		if err := p.Validate(); err == nil {
			t.Fatalf("%s pitch program accepted", name)
		}
	}
	single := PitchProgram{{Altitude: 0, Pitch: 45}}
	if err := single.Validate(); err != nil {
		t.Fatal(err)
	}
	if single.Pitch(-5) != 45 || single.Pitch(1e5) != 45 {
		t.Fatal("single breakpoint program must hold its pitch")
	}
}

func TestStagingSchedule(t *testing.T) {
	c := KerbinConstants()
	s, err := NewStagingSchedule(DefaultCutoff, DefaultReignition, c.Engine())
	if err != nil {
		t.Fatal(err)
	}
	check := func(tm float64, expOn bool, expPhase Phase) {
		on, thrust := s.EngineState(tm)
		if on != expOn {
			t.Fatalf("engine on=%v at t=%f", on, tm)
		}
		if on && thrust != c.Thrust || !on && thrust != 0 {
			t.Fatalf("thrust is %f N at t=%f", thrust, tm)
		}
		if p := s.Phase(tm); p != expPhase {
			t.Fatalf("phase %s at t=%f instead of %s", p, tm, expPhase)
		}
	}
	for tm := 0.0; tm <= 300; tm += 0.01 {
		switch {
		case tm <= 126:
			check(tm, true, Boost1)
		case tm < 245.8:
			check(tm, false, Coast)
		default:
			check(tm, true, Boost2)
		}
	}
	// Exact boundaries.
	check(0, true, Boost1)
	check(126, true, Boost1)
	check(126.000001, false, Coast)
	check(245.799999, false, Coast)
	check(245.8, true, Boost2)
	if b := s.Boundaries(); len(b) != 2 || b[0] != 126 || b[1] != 245.8 {
		t.Fatalf("unexpected boundaries %v", b)
	}
}

func TestStagingScheduleValidate(t *testing.T) {
	engine := KerbinConstants().Engine()
	if _, err := NewStagingSchedule(200, 100, engine); err == nil {
		t.Fatal("reignition before the cutoff accepted")
	}
	if _, err := NewStagingSchedule(-1, 100, engine); err == nil {
		t.Fatal("negative cutoff accepted")
	}
	if _, err := NewStagingSchedule(126, 245.8, Engine{}); err == nil {
		t.Fatal("engine without thrust accepted")
	}
}

func TestPhaseString(t *testing.T) {
	for p, exp := range map[Phase]string{Boost1: "boost1", Coast: "coast", Boost2: "boost2"} {
		if p.String() != exp {
			t.Fatalf("phase %d is `%s`", p, p)
		}
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("unknown phase did not panic")
		}
	}()
	_ = Phase(0).String()
}

func TestStagingBurnout(t *testing.T) {
	c := KerbinConstants()
	s, err := NewStagingSchedule(DefaultCutoff, DefaultReignition, c.Engine())
	if err != nil {
		t.Fatal(err)
	}
	flow := s.Engine.MassFlow(c.Thrust, c.StandardGravity)
	// Propellant left after the first burn is consumed by the second one.
	exp := DefaultReignition + (DefaultLaunchMass-c.DryMass)/flow - DefaultCutoff
	if got := s.Burnout(DefaultLaunchMass, c.DryMass, c.StandardGravity); !scalar.EqualWithinAbs(got, exp, 1e-9) {
		t.Fatalf("burnout at %f s instead of %f s", got, exp)
	}
	if got := s.Burnout(c.DryMass+100*flow, c.DryMass, c.StandardGravity); !scalar.EqualWithinAbs(got, 100, 1e-9) {
		t.Fatalf("burnout during the first burn at %f s", got)
	}
	if got := s.Burnout(c.DryMass, c.DryMass, c.StandardGravity); got != 0 {
		t.Fatalf("burnout without propellant at %f s", got)
	}
}
