// Package chart derives chart-ready series from prediction rows. Every
// builder is a pure function: inputs are never mutated, every call
// returns freshly constructed series, and absent numeric fields
// contribute 0 rather than an error.
package chart

// Series is a labeled sequence of values sharing one x-axis.
type Series struct {
	Name   string
	Labels []string
	Values []float64
}

// Point is one bubble in a size-encoded scatter series.
type Point struct {
	X float64
	Y float64
	R float64
}

// BubbleSeries is a scatter series with per-point radii.
type BubbleSeries struct {
	Name   string
	Points []Point
}

// Panel pairs a chart title with the series it plots, ready for a
// renderer or exporter.
type Panel struct {
	Title  string
	Series []Series
	Bubble *BubbleSeries
}
