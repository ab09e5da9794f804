package lunohod

import "fmt"

// Engine is a chemical engine at rated thrust.
type Engine struct {
	Thrust float64 // N
	Isp    float64 // s
}

// Validate returns an error if the engine cannot produce thrust.
func (e Engine) Validate() error {
	if !(e.Thrust > 0) || !(e.Isp > 0) {
		return fmt.Errorf("engine needs a positive thrust and isp, got %g N and %g s", e.Thrust, e.Isp)
	}
	return nil
}

// MassFlow returns the propellant consumption (kg/s, positive) at the provided thrust.
func (e Engine) MassFlow(thrust, g0 float64) float64 {
	return thrust / (e.Isp * g0)
}

// BurnTime returns how long the engine can burn propellant from mass m0 down to mass m1.
func (e Engine) BurnTime(m0, m1, g0 float64) float64 {
	if m1 >= m0 {
		return 0
	}
	return (m0 - m1) / e.MassFlow(e.Thrust, g0)
}
