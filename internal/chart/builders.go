package chart

import (
	"fmt"

	"github.com/finvix/finvix/internal/results"
)

// maxBubbleRadius bounds the visual size of a bubble regardless of how
// many conversions a row carries.
const maxBubbleRadius = 25

// Trend builds a time-ordered series for one numeric field. Labels come
// from each row's timestamp formatted as a local time string; rows
// without a parseable timestamp fall back to their ordinal. The scale
// multiplier lets rate fields stored as fractions plot as percentages.
func Trend(rows []results.Row, field, name string, scale float64) Series {
	s := Series{
		Name:   name,
		Labels: make([]string, 0, len(rows)),
		Values: make([]float64, 0, len(rows)),
	}
	for i, row := range rows {
		s.Labels = append(s.Labels, timeLabel(row, i))
		s.Values = append(s.Values, row.Number(field)*scale)
	}
	return s
}

func timeLabel(row results.Row, i int) string {
	t := row.Time("time")
	if t.IsZero() {
		return fmt.Sprintf("Row %d", i+1)
	}
	return t.Local().Format("15:04:05")
}

// Filter is a predicate on one categorical field.
type Filter struct {
	Field string
	Value string
}

// GroupedAverage computes the arithmetic mean of a numeric field over
// rows matching every filter. The mean of an empty filtered subset is
// 0, never NaN.
func GroupedAverage(rows []results.Row, valueField string, filters ...Filter) float64 {
	var sum float64
	var n int
	for _, row := range rows {
		if !matches(row, filters) {
			continue
		}
		sum += row.Number(valueField)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func matches(row results.Row, filters []Filter) bool {
	for _, f := range filters {
		if row.String(f.Field) != f.Value {
			return false
		}
	}
	return true
}

// Averages builds one bar series of per-category means, e.g. average
// conversions by campaign type.
func Averages(rows []results.Row, valueField, categoryField, name string, categories []string) Series {
	s := Series{
		Name:   name,
		Labels: make([]string, 0, len(categories)),
		Values: make([]float64, 0, len(categories)),
	}
	for _, cat := range categories {
		s.Labels = append(s.Labels, cat)
		s.Values = append(s.Values, GroupedAverage(rows, valueField, Filter{Field: categoryField, Value: cat}))
	}
	return s
}

// Bubble builds the engagement scatter: impressions on x, clicks on y,
// radius from conversions via min(conversions*2, 25).
func Bubble(rows []results.Row, name string) BubbleSeries {
	b := BubbleSeries{Name: name, Points: make([]Point, 0, len(rows))}
	for _, row := range rows {
		r := row.Number("conversions") * 2
		if r > maxBubbleRadius {
			r = maxBubbleRadius
		}
		b.Points = append(b.Points, Point{
			X: row.Number("impressions"),
			Y: row.Number("clicks"),
			R: r,
		})
	}
	return b
}

// ComparisonPair builds the actual-vs-predicted series for a single
// prediction: always exactly two points, 0 for any missing value.
func ComparisonPair(row results.Row, actualField, predictedField, name string) Series {
	return Series{
		Name:   name,
		Labels: []string{"Actual", "Predicted"},
		Values: []float64{row.Number(actualField), row.Number(predictedField)},
	}
}

// RowComparisons builds per-row actual-vs-predicted series for a batch
// result, labeled "Row 1, Row 2, ..." in backend order.
func RowComparisons(rows []results.Row, actualField, predictedField string) (actual, predicted Series) {
	actual = Series{Name: "Actual", Labels: make([]string, 0, len(rows)), Values: make([]float64, 0, len(rows))}
	predicted = Series{Name: "Predicted", Labels: make([]string, 0, len(rows)), Values: make([]float64, 0, len(rows))}
	for i, row := range rows {
		label := fmt.Sprintf("Row %d", i+1)
		actual.Labels = append(actual.Labels, label)
		actual.Values = append(actual.Values, row.Number(actualField))
		predicted.Labels = append(predicted.Labels, label)
		predicted.Values = append(predicted.Values, row.Number(predictedField))
	}
	return actual, predicted
}
