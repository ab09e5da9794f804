package lunohod

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics are the Prometheus collectors of the simulator. A nil *Metrics records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	runs            *prometheus.CounterVec
	steps           *prometheus.CounterVec
	evaluations     prometheus.Counter
	skippedRecords  prometheus.Counter
	peakAltitude    prometheus.Gauge
	finalMass       prometheus.Gauge
	runDuration     prometheus.Gauge
	referenceSample prometheus.Gauge
}

// NewMetrics returns the simulator collectors registered on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lunohod_runs_total",
			Help: "Ascent propagations by outcome.",
		}, []string{"outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lunohod_integrator_steps_total",
			Help: "Integrator steps by status.",
		}, []string{"status"}),
		evaluations:     prometheus.NewCounter(prometheus.CounterOpts{Name: "lunohod_derivative_evaluations_total", Help: "Evaluations of the equations of motion."}),
		skippedRecords:  prometheus.NewCounter(prometheus.CounterOpts{Name: "lunohod_reference_skipped_records_total", Help: "Malformed reference rows."}),
		peakAltitude:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "lunohod_peak_altitude_meters"}),
		finalMass:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "lunohod_final_mass_kg"}),
		runDuration:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "lunohod_run_duration_seconds"}),
		referenceSample: prometheus.NewGauge(prometheus.GaugeOpts{Name: "lunohod_reference_samples"}),
	}
	m.Registry.MustRegister(m.runs, m.steps, m.evaluations, m.skippedRecords, m.peakAltitude, m.finalMass, m.runDuration, m.referenceSample)
	return m
}

func (m *Metrics) observeRun(traj *Trajectory, elapsed time.Duration) {
	if m == nil {
		return
	}
	stats := traj.Stats()
	m.runs.WithLabelValues("success").Inc()
	m.steps.WithLabelValues("accepted").Add(float64(stats.Accepted))
	m.steps.WithLabelValues("rejected").Add(float64(stats.Rejected))
	m.evaluations.Add(float64(stats.Evaluations))
	m.peakAltitude.Set(Summarize(traj).PeakAltitude)
	m.finalMass.Set(traj.Final().Mass)
	m.runDuration.Set(elapsed.Seconds())
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.runs.WithLabelValues("failure").Inc()
}

// ObserveReference records the outcome of loading a flight recording.
func (m *Metrics) ObserveReference(trace ReferenceTrace, skipped []MalformedRecord) {
	if m == nil {
		return
	}
	m.referenceSample.Set(float64(len(trace)))
	m.skippedRecords.Add(float64(len(skipped)))
}

// Push sends the collected metrics of this batch run to a Pushgateway.
func (m *Metrics) Push(url, job string) error {
	if m == nil {
		return nil
	}
	return push.New(url, job).Gatherer(m.Registry).Push()
}
