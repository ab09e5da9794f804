package lunohod

import (
	"fmt"
	"math"
)

// PhysicalConstants defines the central body, the atmosphere and the vehicle of a simulation.
// It is passed by value and never modified during a run.
type PhysicalConstants struct {
	Mu                float64 `mapstructure:"mu"`                 // Gravitational parameter (m^3/s^2)
	Radius            float64 `mapstructure:"radius"`             // Body radius (m)
	DragCoefficient   float64 `mapstructure:"drag_coefficient"`   // C_d
	ReferenceArea     float64 `mapstructure:"reference_area"`     // Cross section (m^2)
	SeaLevelDensity   float64 `mapstructure:"sea_level_density"`  // ρ0 (kg/m^3)
	ScaleHeight       float64 `mapstructure:"scale_height"`       // H (m)
	AtmosphereCeiling float64 `mapstructure:"atmosphere_ceiling"` // No atmosphere above this altitude (m)
	Isp               float64 `mapstructure:"isp"`                // Specific impulse (s)
	StandardGravity   float64 `mapstructure:"standard_gravity"`   // g0 (m/s^2)
	Thrust            float64 `mapstructure:"thrust"`             // Rated thrust (N)
	DryMass           float64 `mapstructure:"dry_mass"`           // No propellant is consumed at or below this mass (kg)
}

// KerbinConstants returns the constants of the Lunohod launcher ascending from Kerbin.
func KerbinConstants() PhysicalConstants {
	const diameter = 5.9
	return PhysicalConstants{
		Mu:                3.5316e12,
		Radius:            600000,
		DragCoefficient:   0.5,
		ReferenceArea:     0.25 * math.Pi * diameter * diameter,
		SeaLevelDensity:   1.225,
		ScaleHeight:       5000,
		AtmosphereCeiling: 70000,
		Isp:               295,
		StandardGravity:   9.80665,
		Thrust:            5.619e6,
		DryMass:           96300,
	}
}

// Validate returns an error if any of the constants is not strictly positive.
func (c PhysicalConstants) Validate() error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"mu", c.Mu},
		{"radius", c.Radius},
		{"drag_coefficient", c.DragCoefficient},
		{"reference_area", c.ReferenceArea},
		{"sea_level_density", c.SeaLevelDensity},
		{"scale_height", c.ScaleHeight},
		{"atmosphere_ceiling", c.AtmosphereCeiling},
		{"isp", c.Isp},
		{"standard_gravity", c.StandardGravity},
		{"thrust", c.Thrust},
		{"dry_mass", c.DryMass},
	} {
		if !(field.value > 0) || math.IsInf(field.value, 0) {
			return fmt.Errorf("constant %s must be strictly positive and finite, got %g", field.name, field.value)
		}
	}
	return nil
}

// Atmosphere returns the atmosphere model of these constants.
func (c PhysicalConstants) Atmosphere() Atmosphere {
	return Atmosphere{SeaLevelDensity: c.SeaLevelDensity, ScaleHeight: c.ScaleHeight, Ceiling: c.AtmosphereCeiling}
}

// Engine returns the engine of these constants.
func (c PhysicalConstants) Engine() Engine {
	return Engine{Thrust: c.Thrust, Isp: c.Isp}
}

// SurfaceGravity returns the gravitational acceleration at the reference surface.
func (c PhysicalConstants) SurfaceGravity() float64 {
	return c.Mu / (c.Radius * c.Radius)
}
