package lunohod

import (
	"fmt"
	"math"
	"time"
)

// Orbit is the osculating planar two-body orbit of a vehicle state.
type Orbit struct {
	a, e, h float64
	μ       float64
}

// NewOrbitFromState returns the orbit of a state around a body of gravitational parameter μ.
func NewOrbitFromState(s State, μ float64) Orbit {
	r := s.Radius()
	v := s.Speed()
	ξ := (v*v)/2 - μ/r
	rDotV := s.X*s.VX + s.Y*s.VY
	ex := ((v*v-μ/r)*s.X - rDotV*s.VX) / μ
	ey := ((v*v-μ/r)*s.Y - rDotV*s.VY) / μ
	return Orbit{
		a: -μ / (2 * ξ),
		e: norm(ex, ey),
		h: s.X*s.VY - s.Y*s.VX,
		μ: μ,
	}
}

// SemiMajorAxis returns the semi major axis, negative for hyperbolic orbits.
func (o Orbit) SemiMajorAxis() float64 {
	return o.a
}

// Eccentricity returns the eccentricity.
func (o Orbit) Eccentricity() float64 {
	return o.e
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.μ / (2 * o.a)
}

// HNorm returns the norm of the specific angular momentum.
func (o Orbit) HNorm() float64 {
	return math.Abs(o.h)
}

// SemiParameter returns the semi parameter.
func (o Orbit) SemiParameter() float64 {
	return o.h * o.h / o.μ
}

// Bound returns whether this orbit is closed.
func (o Orbit) Bound() bool {
	return o.Energyξ() < 0
}

// Apoapsis returns the apoapsis radius, +Inf if the orbit is not bound.
func (o Orbit) Apoapsis() float64 {
	if !o.Bound() {
		return math.Inf(1)
	}
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis radius.
// NOTE: Computed from the semi parameter so that it is also valid for parabolic orbits.
func (o Orbit) Periapsis() float64 {
	return o.SemiParameter() / (1 + o.e)
}

// ApsidesAltitudes returns the apoapsis and periapsis altitudes above a body of the provided radius.
func (o Orbit) ApsidesAltitudes(radius float64) (apo, peri float64) {
	return o.Apoapsis() - radius, o.Periapsis() - radius
}

// Period returns the period of this orbit, zero if it is not bound.
func (o Orbit) Period() time.Duration {
	if !o.Bound() {
		return 0
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.μ)
	return time.Duration(seconds * float64(time.Second))
}

func (o Orbit) String() string {
	return fmt.Sprintf("a=%.1f e=%.4f rA=%.1f rP=%.1f", o.a, o.e, o.Apoapsis(), o.Periapsis())
}
