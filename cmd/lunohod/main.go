package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	lunohod "github.com/kozatem-glitch/Lunohod-I"
)

// This code reads the scenario, loads the flight recording, propagates the ascent and reports on it.

var (
	scenario  string
	reference string
	outDir    string
	serveAddr string
	pushURL   string
	plot      bool
	tracing   bool
	verbose   bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (defaults to the Lunohod ascent)")
	flag.StringVar(&reference, "reference", "", "flight recording CSV, overrides the scenario")
	flag.StringVar(&outDir, "out", "", "output directory, overrides the scenario")
	flag.BoolVar(&plot, "plot", false, "render the series to PNG")
	flag.StringVar(&serveAddr, "serve", "", "serve the results over HTTP on this address once the run is over")
	flag.StringVar(&pushURL, "push", "", "Pushgateway URL to push the run metrics to")
	flag.BoolVar(&tracing, "trace", false, "print the spans of the run to stderr")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if err := run(context.Background(), logger); err != nil {
		logger.Log("level", "critical", "err", err)
		var failure *lunohod.IntegrationFailure
		if errors.As(err, &failure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, logger kitlog.Logger) (err error) {
	sc, err := lunohod.LoadScenario(scenario)
	if err != nil {
		return err
	}
	if reference != "" {
		sc.Reference = reference
	}
	if outDir != "" {
		sc.Output.Dir = outDir
	}
	sc.Output.Plot = sc.Output.Plot || plot
	if verbose {
		logger.Log("level", "info", "subsys", "conf", "scenario", scenario, "horizon(s)", sc.Mission.Horizon, "cutoff(s)", sc.Staging.Cutoff, "reignition(s)", sc.Staging.Reignition, "initial", sc.Initial, "rtol", sc.Integrator.RelTol, "atol", sc.Integrator.AbsTol, "max_step(s)", sc.Integrator.MaxStep, "launch", sc.Mission.Launch)
	}

	if tracing {
		shutdown, err := initTracing(ctx, os.Stderr)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer shutdown(ctx)
	}
	tracer := otel.Tracer("github.com/kozatem-glitch/Lunohod-I/cmd/lunohod")
	ctx, span := tracer.Start(ctx, "run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	metrics := lunohod.NewMetrics()

	// The recording is loaded before the integration.
	var ref lunohod.ReferenceTrace
	if sc.Reference != "" {
		_, lspan := tracer.Start(ctx, "load-reference")
		var skipped []lunohod.MalformedRecord
		ref, skipped, err = lunohod.LoadReferenceFile(sc.Reference, logger)
		lspan.SetAttributes(attribute.Int("samples", len(ref)), attribute.Int("skipped", len(skipped)))
		lspan.End()
		if err != nil {
			return err
		}
		metrics.ObserveReference(ref, skipped)
	}

	mission, err := lunohod.NewMission(sc, logger, metrics)
	if err != nil {
		return err
	}
	_, pspan := tracer.Start(ctx, "propagate")
	traj, err := mission.Propagate()
	if err != nil {
		pspan.RecordError(err)
		pspan.SetStatus(codes.Error, "propagation failed")
		pspan.End()
		return err
	}
	stats := traj.Stats()
	pspan.SetAttributes(attribute.Int("accepted", stats.Accepted), attribute.Int("rejected", stats.Rejected), attribute.Int("evaluations", stats.Evaluations))
	pspan.End()

	results := lunohod.Results{Summary: lunohod.Summarize(traj)}
	fmt.Println(results.Summary)
	if len(ref) > 0 {
		cmp, err := lunohod.Compare(traj, ref)
		if err != nil {
			logger.Log("level", "warning", "subsys", "report", "err", err)
		} else {
			results.Comparison = &cmp
			fmt.Println(cmp)
		}
	}
	derived := lunohod.Derive(traj)
	results.Series = lunohod.AlignedSeries(derived, ref)

	_, espan := tracer.Start(ctx, "export")
	defer espan.End()
	conf := sc.ExportConfig()
	name, err := lunohod.WriteSeriesCSV(conf, derived)
	if err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "export", "file", name)
	telemetry, err := mission.Telemetry(traj, sc.Mission.TelemetryStep)
	if err != nil {
		return err
	}
	if name, err = lunohod.WriteTelemetryCSV(conf, telemetry); err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "export", "file", name)
	if sc.Output.Plot {
		names, err := lunohod.PlotAligned(conf, results.Series)
		if err != nil {
			return err
		}
		for _, name := range names {
			logger.Log("level", "info", "subsys", "export", "file", name)
		}
	}

	if pushURL != "" {
		if err := metrics.Push(pushURL, "lunohod"); err != nil {
			logger.Log("level", "warning", "subsys", "metrics", "err", err)
		}
	}
	if serveAddr != "" {
		logger.Log("level", "notice", "subsys", "http", "listening", serveAddr)
		return http.ListenAndServe(serveAddr, lunohod.NewRouter(results, metrics, logger))
	}
	return nil
}
