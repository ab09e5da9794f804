package lunohod

// speedFloor avoids dividing by zero when resolving the drag direction at rest.
const speedFloor = 1e-6

// Forces is the breakdown of the derivative at a given time and state.
type Forces struct {
	Phase    Phase
	Pitch    float64    // Commanded pitch (degrees)
	Density  float64    // Air density (kg/m^3)
	Thrust   [2]float64 // Thrust force (N)
	Drag     [2]float64 // Drag force (N)
	Gravity  [2]float64 // Gravitational acceleration (m/s^2)
	MassFlow float64    // dm/dt (kg/s)
}

// Acceleration returns the total acceleration (m/s^2) of a vehicle of mass m.
func (f Forces) Acceleration(m float64) (ax, ay float64) {
	ax = (f.Thrust[0]+f.Drag[0])/m + f.Gravity[0]
	ay = (f.Thrust[1]+f.Drag[1])/m + f.Gravity[1]
	return
}

// gravity returns the inverse square acceleration of the central body at (x, y).
func gravity(μ, x, y float64) (ax, ay float64) {
	r := norm(x, y)
	gScale := μ / (r * r * r)
	return -gScale * x, -gScale * y
}

// drag returns the drag force opposing the velocity (vx, vy) in air of density ρ.
func drag(c PhysicalConstants, ρ, vx, vy float64) (fx, fy float64) {
	v := norm(vx, vy)
	if v < speedFloor {
		v = speedFloor
	}
	f := 0.5 * ρ * v * v * c.DragCoefficient * c.ReferenceArea
	return -f * vx / v, -f * vy / v
}
