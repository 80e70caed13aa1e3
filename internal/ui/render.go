package ui

import (
	"fmt"
	"strings"

	"github.com/finvix/finvix/internal/chart"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline maps values onto eight block heights. A flat series renders
// at mid height so it stays visible.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	var sb strings.Builder
	for _, v := range values {
		idx := len(sparkRunes) / 2
		if max > min {
			idx = int((v - min) / (max - min) * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// barRow renders one horizontal bar scaled against max.
func barRow(st Styles, label string, value, max float64, width int) string {
	filled := 0
	if max > 0 {
		filled = int(value / max * float64(width))
	}
	if filled > width {
		filled = width
	}
	bar := st.BarFill.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", width-filled)
	return fmt.Sprintf("%-28s %s %s", label, bar, st.Value.Render(trimFloat(value)))
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// RenderPanels draws panels as plain terminal output for the one-shot
// (non-watch) views.
func RenderPanels(panels []chart.Panel, width int) string {
	st := DefaultStyles()
	var sb strings.Builder
	for _, p := range panels {
		sb.WriteString(renderPanel(st, p, width))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderPanel draws one panel as text: sparklines for trends, bars for
// labeled single series, a point list for bubbles.
func renderPanel(st Styles, p chart.Panel, width int) string {
	var sb strings.Builder
	sb.WriteString(st.Title.Render(p.Title))
	sb.WriteString("\n")

	switch {
	case p.Bubble != nil:
		for _, pt := range p.Bubble.Points {
			sb.WriteString(fmt.Sprintf("  %s impressions=%s clicks=%s size=%s\n",
				st.Label.Render("•"),
				st.Value.Render(trimFloat(pt.X)),
				st.Value.Render(trimFloat(pt.Y)),
				st.Value.Render(trimFloat(pt.R))))
		}
	case len(p.Series) == 1 && len(p.Series[0].Labels) > 0:
		s := p.Series[0]
		max := 0.0
		for _, v := range s.Values {
			if v > max {
				max = v
			}
		}
		barWidth := width - 40
		if barWidth < 10 {
			barWidth = 10
		}
		for i, v := range s.Values {
			label := ""
			if i < len(s.Labels) {
				label = s.Labels[i]
			}
			sb.WriteString("  " + barRow(st, label, v, max, barWidth) + "\n")
		}
	default:
		for _, s := range p.Series {
			last := ""
			if n := len(s.Values); n > 0 {
				last = trimFloat(s.Values[n-1])
			}
			sb.WriteString(fmt.Sprintf("  %-24s %s %s\n",
				st.Label.Render(s.Name), sparkline(s.Values), st.Value.Render(last)))
		}
	}
	return sb.String()
}
