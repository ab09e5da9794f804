package lunohod

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestOrbitCircular(t *testing.T) {
	c := KerbinConstants()
	r := c.Radius + 100000
	s := State{Y: r, VX: -math.Sqrt(c.Mu / r), Mass: 1}
	o := NewOrbitFromState(s, c.Mu)
	if !o.Bound() {
		t.Fatal("circular orbit is not bound")
	}
	if !scalar.EqualWithinAbs(o.Eccentricity(), 0, 1e-12) {
		t.Fatalf("eccentricity is %g", o.Eccentricity())
	}
	if !scalar.EqualWithinAbs(o.SemiMajorAxis(), r, 1e-3) {
		t.Fatalf("semi major axis is %f", o.SemiMajorAxis())
	}
	apo, peri := o.ApsidesAltitudes(c.Radius)
	if !scalar.EqualWithinAbs(apo, 100000, 1e-3) || !scalar.EqualWithinAbs(peri, 100000, 1e-3) {
		t.Fatalf("apsides are %f and %f", apo, peri)
	}
	exp := time.Duration(2 * math.Pi * math.Sqrt(r*r*r/c.Mu) * float64(time.Second))
	if diff := o.Period() - exp; diff > time.Millisecond || diff < -time.Millisecond {
		t.Fatalf("period is %s instead of %s", o.Period(), exp)
	}
	if !scalar.EqualWithinRel(o.HNorm(), r*math.Sqrt(c.Mu/r), 1e-12) {
		t.Fatalf("angular momentum is %f", o.HNorm())
	}
}

func TestOrbitEccentric(t *testing.T) {
	c := KerbinConstants()
	rP, rA := c.Radius+80000, c.Radius+2000000
	a, e := (rA+rP)/2, (rA-rP)/(rA+rP)
	// Periapsis velocity from the vis viva equation.
	vP := math.Sqrt(c.Mu * (2/rP - 1/a))
	o := NewOrbitFromState(State{X: rP, VY: vP, Mass: 1}, c.Mu)
	if !scalar.EqualWithinRel(o.Eccentricity(), e, 1e-9) {
		t.Fatalf("eccentricity is %f instead of %f", o.Eccentricity(), e)
	}
	if !scalar.EqualWithinRel(o.Apoapsis(), rA, 1e-9) || !scalar.EqualWithinRel(o.Periapsis(), rP, 1e-9) {
		t.Fatalf("apsides are %f and %f instead of %f and %f", o.Apoapsis(), o.Periapsis(), rA, rP)
	}
	if !scalar.EqualWithinRel(o.Energyξ(), -c.Mu/(2*a), 1e-9) {
		t.Fatalf("energy is %f", o.Energyξ())
	}
}

func TestOrbitEscape(t *testing.T) {
	c := KerbinConstants()
	r := c.Radius + 100000
	o := NewOrbitFromState(State{Y: r, VX: 1.5 * math.Sqrt(2*c.Mu/r), Mass: 1}, c.Mu)
	if o.Bound() || o.Eccentricity() <= 1 {
		t.Fatalf("escape orbit is bound: %s", o)
	}
	if !math.IsInf(o.Apoapsis(), 1) {
		t.Fatalf("escape apoapsis is %f", o.Apoapsis())
	}
	if o.Period() != 0 {
		t.Fatalf("escape period is %s", o.Period())
	}
	if !scalar.EqualWithinAbs(o.Periapsis(), r, 1e-3) {
		t.Fatalf("escape periapsis is %f", o.Periapsis())
	}
}

func TestOrbitOnThePad(t *testing.T) {
	c := KerbinConstants()
	apo, peri := NewOrbitFromState(LaunchState(c.Radius, 1), c.Mu).ApsidesAltitudes(c.Radius)
	if !scalar.EqualWithinAbs(apo, 0, 1e-6) || peri != -c.Radius {
		t.Fatalf("apsides at rest are %f and %f", apo, peri)
	}
}
