package lunohod

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	simulatedColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	referenceColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotSeries renders the simulated and recorded series of one observable to a PNG and returns the file name.
func PlotSeries(conf ExportConfig, pair SeriesPair) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over time", pair.Name)
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", pair.Name, pair.Unit)
	p.Add(plotter.NewGrid())
	for _, curve := range []struct {
		label  string
		series Series
		color  color.Color
	}{
		{"simulated", pair.Simulated, simulatedColor},
		{"reference", pair.Reference, referenceColor},
	} {
		if curve.series.Len() == 0 {
			continue
		}
		line, err := plotter.NewLine(curve.series)
		if err != nil {
			return "", fmt.Errorf("plotting %s %s: %w", curve.label, pair.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = curve.color
		p.Add(line)
		p.Legend.Add(curve.label, line)
	}
	if err := ensureDir(conf.OutputDir); err != nil {
		return "", err
	}
	name := conf.path(pair.Name, "png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, name); err != nil {
		return "", err
	}
	return name, nil
}

// PlotAligned renders every observable and returns the file names.
func PlotAligned(conf ExportConfig, a Aligned) ([]string, error) {
	var names []string
	for _, pair := range a.Pairs() {
		name, err := PlotSeries(conf, pair)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}
