package lunohod

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	kitlog "github.com/go-kit/kit/log"
)

// TelemetryHeader is the header of a flight recording, one name per ReferenceSample field.
var TelemetryHeader = []string{"time", "altitude", "apoapsis", "periapsis", "speed", "pitch", "throttle", "mass", "dynamic_pressure"}

// ReferenceSample is one row of recorded flight telemetry.
type ReferenceSample struct {
	Time            float64 `json:"time"`             // s
	Altitude        float64 `json:"altitude"`         // m
	Apoapsis        float64 `json:"apoapsis"`         // m above the surface
	Periapsis       float64 `json:"periapsis"`        // m above the surface
	Speed           float64 `json:"speed"`            // m/s
	Pitch           float64 `json:"pitch"`            // degrees
	Throttle        float64 `json:"throttle"`         // [0, 1]
	Mass            float64 `json:"mass"`             // kg
	DynamicPressure float64 `json:"dynamic_pressure"` // Pa
}

// Fields returns the sample in the order of TelemetryHeader.
func (s ReferenceSample) Fields() []float64 {
	return []float64{s.Time, s.Altitude, s.Apoapsis, s.Periapsis, s.Speed, s.Pitch, s.Throttle, s.Mass, s.DynamicPressure}
}

func sampleFromFields(f []float64) ReferenceSample {
	return ReferenceSample{
		Time: f[0], Altitude: f[1], Apoapsis: f[2], Periapsis: f[3], Speed: f[4],
		Pitch: f[5], Throttle: f[6], Mass: f[7], DynamicPressure: f[8],
	}
}

// ReferenceTrace is a time ascending sequence of telemetry samples.
type ReferenceTrace []ReferenceSample

// Times returns the sample times.
func (r ReferenceTrace) Times() []float64 {
	return r.channel(func(s ReferenceSample) float64 { return s.Time })
}

// Altitudes returns the sample altitudes.
func (r ReferenceTrace) Altitudes() []float64 {
	return r.channel(func(s ReferenceSample) float64 { return s.Altitude })
}

// Speeds returns the sample speeds.
func (r ReferenceTrace) Speeds() []float64 {
	return r.channel(func(s ReferenceSample) float64 { return s.Speed })
}

// Masses returns the sample masses.
func (r ReferenceTrace) Masses() []float64 {
	return r.channel(func(s ReferenceSample) float64 { return s.Mass })
}

func (r ReferenceTrace) channel(f func(ReferenceSample) float64) []float64 {
	out := make([]float64, len(r))
	for i, s := range r {
		out[i] = f(s)
	}
	return out
}

// LoadReference reads a flight recording. The first non empty line is the header.
// Rows which cannot be parsed, or whose time is before the previous row's, are skipped, logged and returned
// as MalformedRecords in line order. A row whose time jumps ahead of the rows following it is itself
// skipped once the next row fits between it and the row before it: a single corrupted time does not
// reject the rest of the recording. Only read errors are returned as errors.
func LoadReference(r io.Reader, logger kitlog.Logger) (ReferenceTrace, []MalformedRecord, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "reference")
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	var (
		trace   ReferenceTrace
		skipped []MalformedRecord
		header  bool
		lineNo  int
		// Line and record of the last accepted sample.
		lastLine   int
		lastRecord string
	)
	skip := func(rec MalformedRecord) {
		logger.Log("level", "warning", "status", "skipping", "line", rec.Line, "err", rec.Err)
		skipped = append(skipped, rec)
	}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		// Remove double quotes
		line = strings.Replace(line, "\"", "", -1)
		if len(line) == 0 {
			continue
		}
		if !header { // Skip header line
			header = true
			continue
		}
		sample, err := parseSample(line)
		if err == nil && len(trace) > 0 && sample.Time < trace[len(trace)-1].Time {
			last := trace[len(trace)-1]
			if n := len(trace); n == 1 || trace[n-2].Time <= sample.Time {
				// The previous row is the one out of order.
				skip(MalformedRecord{Line: lastLine, Record: lastRecord, Err: fmt.Errorf("%w: %g s is followed by %g s", ErrTimeOrder, last.Time, sample.Time)})
				trace = trace[:n-1]
			} else {
				err = fmt.Errorf("%w: %g s after %g s", ErrTimeOrder, sample.Time, last.Time)
			}
		}
		if err != nil {
			skip(MalformedRecord{Line: lineNo, Record: line, Err: err})
			continue
		}
		trace = append(trace, sample)
		lastLine, lastRecord = lineNo, line
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading reference: %w", err)
	}
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Line < skipped[j].Line })
	logger.Log("level", "info", "status", "loaded", "samples", len(trace), "skipped", len(skipped))
	return trace, skipped, nil
}

// LoadReferenceFile reads the flight recording at path.
func LoadReferenceFile(path string, logger kitlog.Logger) (ReferenceTrace, []MalformedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return LoadReference(f, logger)
}

func parseSample(line string) (ReferenceSample, error) {
	entries := strings.Split(line, ",")
	if len(entries) != len(TelemetryHeader) {
		return ReferenceSample{}, fmt.Errorf("%w: expected %d, got %d", ErrFieldCount, len(TelemetryHeader), len(entries))
	}
	fields := make([]float64, len(entries))
	for i, entry := range entries {
		v, err := strconv.ParseFloat(strings.TrimSpace(entry), 64)
		if err != nil {
			return ReferenceSample{}, fmt.Errorf("malformatted %s `%s`: %w", TelemetryHeader[i], entry, err)
		}
		// Unbound orbits have an infinite apoapsis.
		if math.IsNaN(v) || (math.IsInf(v, 0) && TelemetryHeader[i] != "apoapsis") {
			return ReferenceSample{}, fmt.Errorf("%s is not finite", TelemetryHeader[i])
		}
		fields[i] = v
	}
	return sampleFromFields(fields), nil
}
