package lunohod

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
)

// Recorder appends telemetry samples to a flight recording.
// It is the writing side of LoadReference, used to store live captures and simulated traces alike.
type Recorder struct {
	w      *csv.Writer
	header bool
}

// NewRecorder returns a recorder which writes the header before the first sample.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: csv.NewWriter(w)}
}

// Record writes one sample. Pitch and throttle are written as is, all the other channels to the centimeter.
func (r *Recorder) Record(s ReferenceSample) error {
	if !r.header {
		if err := r.w.Write(TelemetryHeader); err != nil {
			return err
		}
		r.header = true
	}
	fields := s.Fields()
	row := make([]string, len(fields))
	for i, v := range fields {
		if name := TelemetryHeader[i]; name != "pitch" && name != "throttle" {
			v = round2(v)
		}
		row[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return r.w.Write(row)
}

// Flush writes any buffered sample to the underlying writer.
func (r *Recorder) Flush() error {
	r.w.Flush()
	return r.w.Error()
}

// WriteTrace records a whole trace and flushes it.
func WriteTrace(w io.Writer, trace ReferenceTrace) error {
	rec := NewRecorder(w)
	for _, s := range trace {
		if err := rec.Record(s); err != nil {
			return err
		}
	}
	return rec.Flush()
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
