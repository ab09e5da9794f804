package lunohod

import "fmt"

// StateSize is the dimension of the ascent state vector.
const StateSize = 5

// State is the planar state of the vehicle: position (m), velocity (m/s) and mass (kg).
// The body center is the origin and the launch site is on the +Y axis.
type State struct {
	X    float64 `mapstructure:"x"`
	Y    float64 `mapstructure:"y"`
	VX   float64 `mapstructure:"vx"`
	VY   float64 `mapstructure:"vy"`
	Mass float64 `mapstructure:"mass"`
}

// LaunchState returns a vehicle at rest on the surface of a body of the provided radius.
func LaunchState(radius, mass float64) State {
	return State{X: 0, Y: radius, Mass: mass}
}

// Vector returns the state as [x, y, vx, vy, m].
func (s State) Vector() []float64 {
	return []float64{s.X, s.Y, s.VX, s.VY, s.Mass}
}

// StateFromVector returns the state from a [x, y, vx, vy, m] vector.
func StateFromVector(v []float64) State {
	if len(v) != StateSize {
		panic(fmt.Errorf("state vector must have %d components, got %d", StateSize, len(v)))
	}
	return State{X: v[0], Y: v[1], VX: v[2], VY: v[3], Mass: v[4]}
}

// Radius returns the distance to the body center.
func (s State) Radius() float64 {
	return norm(s.X, s.Y)
}

// Altitude returns the altitude above a body of the provided radius.
func (s State) Altitude(radius float64) float64 {
	return s.Radius() - radius
}

// Speed returns the norm of the velocity.
func (s State) Speed() float64 {
	return norm(s.VX, s.VY)
}

func (s State) String() string {
	return fmt.Sprintf("r=(%.3f, %.3f) m v=(%.3f, %.3f) m/s m=%.3f kg", s.X, s.Y, s.VX, s.VY, s.Mass)
}
