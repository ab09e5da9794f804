package lunohod

import "math"

const (
	deg2rad = math.Pi / 180
	// invφ is the inverse of the golden ratio.
	invφ = 0.6180339887498949
)

// norm returns the norm of a planar vector.
func norm(x, y float64) float64 {
	return math.Hypot(x, y)
}

// Deg2rad converts degrees to radians.
func Deg2rad(a float64) float64 {
	return a * deg2rad
}

// Rad2deg converts radians to degrees.
func Rad2deg(a float64) float64 {
	return a / deg2rad
}

// lerp linearly interpolates between (x0, y0) and (x1, y1) at x.
func lerp(x, x0, y0, x1, y1 float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// goldenMax returns the abscissa and value of the maximum of a unimodal f over [a, b].
func goldenMax(f func(float64) float64, a, b, tol float64) (float64, float64) {
	c := b - invφ*(b-a)
	d := a + invφ*(b-a)
	fc, fd := f(c), f(d)
	for b-a > tol {
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - invφ*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invφ*(b-a)
			fd = f(d)
		}
	}
	x := (a + b) / 2
	return x, f(x)
}
