package lunohod

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// peakTimeε is the resolution (s) of the peak search on the dense output.
const peakTimeε = 1e-6

// Summary are the headline figures of an ascent.
type Summary struct {
	PeakSpeed        float64 `json:"peak_speed"`         // m/s
	PeakSpeedTime    float64 `json:"peak_speed_time"`    // s
	FinalSpeed       float64 `json:"final_speed"`        // m/s
	PeakAltitude     float64 `json:"peak_altitude"`      // m
	PeakAltitudeTime float64 `json:"peak_altitude_time"` // s
	FinalAltitude    float64 `json:"final_altitude"`     // m
	FinalMass        float64 `json:"final_mass"`         // kg
}

// Summarize returns the summary of a trajectory. The peaks are searched on the dense output around the
// best grid sample so that they do not depend on where the integrator happened to step.
func Summarize(traj *Trajectory) Summary {
	d := Derive(traj)
	last := len(d.Time) - 1
	s := Summary{
		FinalSpeed:    d.Speed[last],
		FinalAltitude: d.Altitude[last],
		FinalMass:     d.Mass[last],
	}
	s.PeakAltitudeTime, s.PeakAltitude = refinePeak(d.Time, d.Altitude, traj.altitudeAt)
	s.PeakSpeedTime, s.PeakSpeed = refinePeak(d.Time, d.Speed, traj.speedAt)
	return s
}

// refinePeak returns the maximum of f in the grid intervals adjacent to the largest sample of values.
func refinePeak(times, values []float64, f func(float64) float64) (float64, float64) {
	i := floats.MaxIdx(values)
	tPeak, vPeak := times[i], values[i]
	lo, hi := times[max(i-1, 0)], times[min(i+1, len(times)-1)]
	if hi > lo {
		if t, v := goldenMax(f, lo, hi, peakTimeε); v > vPeak {
			tPeak, vPeak = t, v
		}
	}
	return tPeak, vPeak
}

func (s Summary) String() string {
	return fmt.Sprintf(`Peak speed:     %.2f m/s (t=%.2f s)
Final speed:    %.2f m/s
Peak altitude:  %.2f m (t=%.2f s)
Final altitude: %.2f m
Final mass:     %.2f kg`, s.PeakSpeed, s.PeakSpeedTime, s.FinalSpeed, s.PeakAltitude, s.PeakAltitudeTime, s.FinalAltitude, s.FinalMass)
}

// ChannelStats are the residual statistics (simulated minus reference) of one telemetry channel.
type ChannelStats struct {
	Samples int     `json:"samples"`
	Bias    float64 `json:"bias"`
	RMSE    float64 `json:"rmse"`
	MaxAbs  float64 `json:"max_abs"`
}

func newChannelStats(residuals []float64) ChannelStats {
	if len(residuals) == 0 {
		return ChannelStats{}
	}
	return ChannelStats{
		Samples: len(residuals),
		Bias:    stat.Mean(residuals, nil),
		RMSE:    math.Sqrt(floats.Dot(residuals, residuals) / float64(len(residuals))),
		MaxAbs:  floats.Norm(residuals, math.Inf(1)),
	}
}

// Comparison is the agreement of a trajectory with a flight recording.
type Comparison struct {
	Altitude ChannelStats `json:"altitude"`
	Speed    ChannelStats `json:"speed"`
	Mass     ChannelStats `json:"mass"`
	Outside  int          `json:"outside"` // Reference samples outside of the trajectory's time span.
}

func (c Comparison) String() string {
	return fmt.Sprintf("altitude bias=%.2f m rmse=%.2f m max=%.2f m | speed bias=%.2f m/s rmse=%.2f m/s max=%.2f m/s | mass bias=%.2f kg rmse=%.2f kg max=%.2f kg (%d samples, %d outside)",
		c.Altitude.Bias, c.Altitude.RMSE, c.Altitude.MaxAbs, c.Speed.Bias, c.Speed.RMSE, c.Speed.MaxAbs, c.Mass.Bias, c.Mass.RMSE, c.Mass.MaxAbs, c.Altitude.Samples, c.Outside)
}

// ErrNoOverlap is returned when no reference sample falls within the trajectory.
var ErrNoOverlap = errors.New("reference does not overlap the trajectory")

// Compare evaluates the trajectory at each reference time and returns the residual statistics.
func Compare(traj *Trajectory, ref ReferenceTrace) (Comparison, error) {
	var c Comparison
	var dAlt, dSpeed, dMass []float64
	for _, sample := range ref {
		s, err := traj.At(sample.Time)
		if err != nil {
			c.Outside++
			continue
		}
		dAlt = append(dAlt, s.Altitude(traj.radius)-sample.Altitude)
		dSpeed = append(dSpeed, s.Speed()-sample.Speed)
		dMass = append(dMass, s.Mass-sample.Mass)
	}
	if len(dAlt) == 0 {
		return c, ErrNoOverlap
	}
	c.Altitude = newChannelStats(dAlt)
	c.Speed = newChannelStats(dSpeed)
	c.Mass = newChannelStats(dMass)
	return c, nil
}

// Series is a named time series.
type Series struct {
	Time  []float64 `json:"time"`
	Value []float64 `json:"value"`
}

// Len returns the number of points of the series.
func (s Series) Len() int {
	return len(s.Time)
}

// XY returns the i-th point, which allows plotting a series directly.
func (s Series) XY(i int) (x, y float64) {
	return s.Time[i], s.Value[i]
}

// SeriesPair is one observable as simulated and as recorded.
type SeriesPair struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Simulated Series `json:"simulated"`
	Reference Series `json:"reference"`
}

// Aligned are the observables handed to the rendering, on a common time axis.
type Aligned struct {
	Altitude SeriesPair `json:"altitude"`
	Speed    SeriesPair `json:"speed"`
	Mass     SeriesPair `json:"mass"`
}

// Pairs returns the series in display order.
func (a Aligned) Pairs() []SeriesPair {
	return []SeriesPair{a.Altitude, a.Speed, a.Mass}
}

// Pair returns the series with the provided name.
func (a Aligned) Pair(name string) (SeriesPair, bool) {
	for _, p := range a.Pairs() {
		if p.Name == name {
			return p, true
		}
	}
	return SeriesPair{}, false
}

// AlignedSeries returns the altitude, speed and mass series of a simulation and of a recording, both
// over mission elapsed time. The reference may be empty.
func AlignedSeries(d DerivedSeries, ref ReferenceTrace) Aligned {
	times := ref.Times()
	return Aligned{
		Altitude: SeriesPair{Name: "altitude", Unit: "m", Simulated: Series{d.Time, d.Altitude}, Reference: Series{times, ref.Altitudes()}},
		Speed:    SeriesPair{Name: "speed", Unit: "m/s", Simulated: Series{d.Time, d.Speed}, Reference: Series{times, ref.Speeds()}},
		Mass:     SeriesPair{Name: "mass", Unit: "kg", Simulated: Series{d.Time, d.Mass}, Reference: Series{times, ref.Masses()}},
	}
}
