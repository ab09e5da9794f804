package lunohod

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the exporting of a run.
type ExportConfig struct {
	OutputDir string
	Filename  string    // Prefix of every exported file.
	Timestamp bool      // Appends the creation time to the file names.
	Launch    time.Time // Launch epoch, zero if unknown.
}

// path returns the file name of an export of the provided kind.
func (c ExportConfig) path(kind, ext string) string {
	name := fmt.Sprintf("%s-%s", c.Filename, kind)
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	return filepath.Join(c.OutputDir, name+"."+ext)
}

// create returns a file which requires a defer close statement!
func (c ExportConfig) create(kind, ext string) (*os.File, error) {
	if err := ensureDir(c.OutputDir); err != nil {
		return nil, err
	}
	return os.Create(c.path(kind, ext))
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteSeriesCSV writes the derived series and returns the file name.
// A Julian date column is added when the launch epoch is known.
func WriteSeriesCSV(conf ExportConfig, d DerivedSeries) (string, error) {
	f, err := conf.create("series", "csv")
	if err != nil {
		return "", err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	withJD := !conf.Launch.IsZero()
	// Header
	fmt.Fprintf(w, "# Creation date (UTC): %s\n# Records are time (s), altitude (m), speed (m/s), mass (kg)\n", time.Now().UTC())
	if withJD {
		fmt.Fprintf(w, "#   Launch (UTC): %s\n#   jd is a UTC Julian date\ntime,jd,altitude,speed,mass\n", conf.Launch.UTC())
	} else {
		fmt.Fprint(w, "time,altitude,speed,mass\n")
	}
	for i, t := range d.Time {
		if withJD {
			dt := conf.Launch.Add(time.Duration(t * float64(time.Second)))
			fmt.Fprintf(w, "%.6f,%.8f,%.3f,%.3f,%.3f\n", t, julian.TimeToJD(dt), d.Altitude[i], d.Speed[i], d.Mass[i])
		} else {
			fmt.Fprintf(w, "%.6f,%.3f,%.3f,%.3f\n", t, d.Altitude[i], d.Speed[i], d.Mass[i])
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return f.Name(), f.Close()
}

// WriteTelemetryCSV writes a trace in the flight recording format and returns the file name.
func WriteTelemetryCSV(conf ExportConfig, trace ReferenceTrace) (string, error) {
	f, err := conf.create("simulated", "csv")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteTrace(f, trace); err != nil {
		return "", err
	}
	return f.Name(), f.Close()
}
