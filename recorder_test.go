package lunohod

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	samples := []ReferenceSample{
		{Time: 0.123, Altitude: 75.456, Apoapsis: 80.004, Periapsis: -599000.555, Speed: 3.1, Pitch: 89.87654321, Throttle: 0.333333, Mass: 370500.999, DynamicPressure: 5.9},
		{Time: 1.5, Altitude: 90000, Apoapsis: math.Inf(1), Periapsis: 12345.5, Speed: 2300, Pitch: 0, Throttle: 1, Mass: 96300, DynamicPressure: 0},
	}
	for _, s := range samples {
		if err := rec.Record(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != strings.Join(TelemetryHeader, ",") {
		t.Fatalf("unexpected recording:\n%s", buf.String())
	}
	if lines[1] != "0.12,75.46,80,-599000.56,3.1,89.87654321,0.333333,370501,5.9" {
		t.Fatalf("unexpected row `%s`", lines[1])
	}
	trace, skipped, err := LoadReference(&buf, nil)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("recording does not load back: %v %v", skipped, err)
	}
	if len(trace) != 2 || trace[1] != samples[1] {
		t.Fatalf("unexpected trace %+v", trace)
	}
}

func TestWriteTrace(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrace(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty trace wrote `%s`", buf.String())
	}
	trace := ReferenceTrace{{Time: 1}, {Time: 2}}
	if err := WriteTrace(&buf, trace); err != nil {
		t.Fatal(err)
	}
	loaded, _, _ := LoadReference(&buf, nil)
	if len(loaded) != 2 || loaded[1].Time != 2 {
		t.Fatalf("unexpected trace %+v", loaded)
	}
}
