package lunohod

import "math"

// Atmosphere is an isothermal exponential atmosphere with a hard ceiling.
type Atmosphere struct {
	SeaLevelDensity float64 // kg/m^3
	ScaleHeight     float64 // m
	Ceiling         float64 // m
}

// Density returns the air density at altitude h above the reference surface.
// Negative altitudes (numerical overshoot near the surface) are treated as the surface.
func (a Atmosphere) Density(h float64) float64 {
	if h < 0 {
		h = 0
	}
	if h > a.Ceiling {
		return 0
	}
	return a.SeaLevelDensity * math.Exp(-h/a.ScaleHeight)
}

// DynamicPressure returns ½ρv² at altitude h for a speed v.
func (a Atmosphere) DynamicPressure(h, v float64) float64 {
	return 0.5 * a.Density(h) * v * v
}
