// Package chart turns a stored titration curve into a chart description the
// frontend can render without recomputing anything.
package chart

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"acidbase/internal/domain"
	"acidbase/internal/equilibrium"
)

// Series names and axis labels.
const (
	SeriesPH  = "pH"
	SeriesPOH = "pOH"

	XAxisLabel = "Volume ratio"
	YAxisLabel = "pH"

	MarkerEquivalence     = "Equivalence point"
	MarkerHalfEquivalence = "Half-equivalence (pH = pKa)"
)

var defaultColors = []string{"#4F46E5", "#10B981", "#F59E0B", "#EF4444"}

// BuildTitrationChart describes points as a line chart with pH and pOH series
// and markers at the equivalence and half-equivalence samples. The y-axis is
// clamped to the pH scale and rounded outward to whole units.
func BuildTitrationChart(title string, points []equilibrium.Point) domain.ChartConfig {
	if title == "" {
		title = "Titration curve"
	}
	config := domain.ChartConfig{
		ChartType:  "line",
		Title:      title,
		XAxis:      XAxisLabel,
		YAxis:      YAxisLabel,
		YMin:       0,
		YMax:       equilibrium.PHScale,
		ShowLegend: true,
		ShowGrid:   true,
	}
	if len(points) == 0 {
		config.Series = []domain.ChartSeries{}
		config.Colors = []string{}
		return config
	}

	ph := make([]domain.ChartPoint, len(points))
	poh := make([]domain.ChartPoint, len(points))
	values := make([]float64, 0, 2*len(points))
	for i, p := range points {
		ph[i] = domain.ChartPoint{X: p.VolumeRatio, Y: p.PH}
		poh[i] = domain.ChartPoint{X: p.VolumeRatio, Y: p.POH}
		values = append(values, p.PH, p.POH)
	}

	config.YMin = math.Max(0, math.Floor(floats.Min(values)))
	config.YMax = math.Min(equilibrium.PHScale, math.Ceil(floats.Max(values)))
	config.Series = []domain.ChartSeries{
		{Name: SeriesPH, Data: ph},
		{Name: SeriesPOH, Data: poh},
	}
	config.Colors = assignColors(len(config.Series))
	config.Markers = markers(points)
	return config
}

func markers(points []equilibrium.Point) []domain.ChartMarker {
	n := len(points) - 1
	if n < equilibrium.MinSampleCount {
		return nil
	}
	eq := points[n/2]
	half := points[n/4]
	return []domain.ChartMarker{
		{Label: MarkerEquivalence, X: eq.VolumeRatio, Y: eq.PH},
		{Label: MarkerHalfEquivalence, X: half.VolumeRatio, Y: half.PH},
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
