package integrator

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Stats stores the work done by an integration.
type Stats struct {
	Accepted    int // Accepted steps.
	Rejected    int // Rejected steps.
	Evaluations int // Calls to the ODE function.
}

// Solution is the result of an integration: the accepted steps and a continuous interpolant over them.
type Solution struct {
	T     []float64   // Times of the accepted steps, T[0] being the start time.
	Y     [][]float64 // States at each T.
	Stats Stats
	n     int
	// rcont holds the five continuous extension vectors of step i, flattened, between T[i] and T[i+1].
	rcont [][]float64
}

func newSolution(t0 float64, y0 []float64) *Solution {
	s := &Solution{n: len(y0)}
	first := make([]float64, len(y0))
	copy(first, y0)
	s.T = append(s.T, t0)
	s.Y = append(s.Y, first)
	return s
}

// push stores an accepted step of size h ending at (tNew, yNew).
func (s *Solution) push(h, tNew float64, y, yNew, k1, k3, k4, k5, k6, k7 []float64) {
	n := s.n
	rc := make([]float64, 5*n)
	r1, r2, r3, r4, r5 := rc[:n], rc[n:2*n], rc[2*n:3*n], rc[3*n:4*n], rc[4*n:]
	copy(r1, y)
	floats.SubTo(r2, yNew, y)
	for i := 0; i < n; i++ {
		bspl := h*k1[i] - r2[i]
		r3[i] = bspl
		r4[i] = r2[i] - h*k7[i] - bspl
		r5[i] = h * (d1*k1[i] + d3*k3[i] + d4*k4[i] + d5*k5[i] + d6*k6[i] + d7*k7[i])
	}
	last := make([]float64, n)
	copy(last, yNew)
	s.T = append(s.T, tNew)
	s.Y = append(s.Y, last)
	s.rcont = append(s.rcont, rc)
}

// Start returns the first time of the solution.
func (s *Solution) Start() float64 {
	return s.T[0]
}

// End returns the last time of the solution.
func (s *Solution) End() float64 {
	return s.T[len(s.T)-1]
}

// Len returns the number of points of the solution grid.
func (s *Solution) Len() int {
	return len(s.T)
}

// At returns the interpolated state at time t.
func (s *Solution) At(t float64) ([]float64, error) {
	dst := make([]float64, s.n)
	if err := s.atInto(dst, t); err != nil {
		return nil, err
	}
	return dst, nil
}

// atInto writes the interpolated state at time t into dst, which must have the dimension of the state.
func (s *Solution) atInto(dst []float64, t float64) error {
	if len(dst) != s.n {
		panic("dense output destination has the wrong dimension")
	}
	if t < s.Start() || t > s.End() {
		return ErrOutOfRange
	}
	idx := sort.SearchFloat64s(s.T, t)
	if s.T[idx] == t {
		copy(dst, s.Y[idx])
		return nil
	}
	step := idx - 1
	t0, t1 := s.T[step], s.T[step+1]
	θ := (t - t0) / (t1 - t0)
	θ1 := 1 - θ
	n := s.n
	rc := s.rcont[step]
	for i := 0; i < n; i++ {
		dst[i] = rc[i] + θ*(rc[n+i]+θ1*(rc[2*n+i]+θ*(rc[3*n+i]+θ1*rc[4*n+i])))
	}
	return nil
}
