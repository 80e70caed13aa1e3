package report

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/finvix/finvix/internal/chart"
)

const (
	snapshotName = "prediction-report.pdf"

	chartWidthPx  = 800
	chartHeightPx = 320

	pageWidthMM = 210
	marginMM    = 10
)

// Snapshot renders the given panels to chart images and assembles them
// into a single-page PDF, the local counterpart of the server report.
// The page height follows the combined image aspect ratio rather than
// a fixed paper size. Only the panels are captured; interactive
// controls never appear in the output.
func Snapshot(panels []chart.Panel, title, outDir string) (string, error) {
	if len(panels) == 0 {
		return "", fmt.Errorf("nothing to capture")
	}

	type rendered struct {
		data []byte
		hMM  float64
	}

	imgWidthMM := float64(pageWidthMM - 2*marginMM)
	images := make([]rendered, 0, len(panels))
	totalMM := float64(marginMM)

	for _, p := range panels {
		var buf bytes.Buffer
		if err := renderPanel(p, &buf); err != nil {
			return "", fmt.Errorf("rendering %q: %w", p.Title, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return "", fmt.Errorf("decoding rendered %q: %w", p.Title, err)
		}
		hMM := imgWidthMM * float64(cfg.Height) / float64(cfg.Width)
		images = append(images, rendered{data: buf.Bytes(), hMM: hMM})
		totalMM += hMM + marginMM
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: pageWidthMM, Ht: totalMM + 14},
	})
	doc.SetTitle(title, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")

	y := float64(marginMM) + 8
	for i, img := range images {
		name := fmt.Sprintf("panel-%d", i)
		doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img.data))
		doc.ImageOptions(name, marginMM, y, imgWidthMM, img.hMM, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		y += img.hMM + marginMM
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(outDir, snapshotName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := doc.Output(f); err != nil {
		return "", fmt.Errorf("writing snapshot PDF: %w", err)
	}
	return path, nil
}

// renderPanel draws one panel as a PNG. Single labeled series become
// bar charts, bubble panels become sized scatters, everything else a
// line chart.
func renderPanel(p chart.Panel, buf *bytes.Buffer) error {
	switch {
	case p.Bubble != nil:
		return renderBubble(p, buf)
	case len(p.Series) == 1 && len(p.Series[0].Labels) > 0:
		return renderBars(p, buf)
	default:
		return renderLines(p, buf)
	}
}

// flatRange widens a zero-span value set into an explicit axis range;
// go-chart rejects a zero data range, and an all-zero panel is valid
// data that should render flat.
func flatRange(seriesValues ...[]float64) *gochart.ContinuousRange {
	min, max := math.Inf(1), math.Inf(-1)
	for _, vs := range seriesValues {
		for _, v := range vs {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if min != max {
		return nil
	}
	return &gochart.ContinuousRange{Min: min - 1, Max: max + 1}
}

func renderLines(p chart.Panel, buf *bytes.Buffer) error {
	series := make([]gochart.Series, 0, len(p.Series))
	allValues := make([][]float64, 0, len(p.Series))
	for _, s := range p.Series {
		xs := make([]float64, len(s.Values))
		for i := range s.Values {
			xs[i] = float64(i + 1)
		}
		ys := s.Values
		// go-chart needs at least two points per series.
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append([]float64{ys[0]}, ys[0])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		})
		allValues = append(allValues, ys)
	}
	graph := gochart.Chart{
		Title:  p.Title,
		Width:  chartWidthPx,
		Height: chartHeightPx,
		Series: series,
	}
	if r := flatRange(allValues...); r != nil {
		graph.YAxis = gochart.YAxis{Range: r}
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	return graph.Render(gochart.PNG, buf)
}

func renderBars(p chart.Panel, buf *bytes.Buffer) error {
	s := p.Series[0]
	values := make([]gochart.Value, len(s.Values))
	for i, v := range s.Values {
		label := ""
		if i < len(s.Labels) {
			label = s.Labels[i]
		}
		values[i] = gochart.Value{Label: label, Value: v}
	}
	graph := gochart.BarChart{
		Title:  p.Title,
		Width:  chartWidthPx,
		Height: chartHeightPx,
		Bars:   values,
	}
	if r := flatRange(s.Values); r != nil {
		graph.YAxis = gochart.YAxis{Range: r}
	}
	return graph.Render(gochart.PNG, buf)
}

func renderBubble(p chart.Panel, buf *bytes.Buffer) error {
	b := p.Bubble
	series := make([]gochart.Series, 0, len(b.Points))
	for _, pt := range b.Points {
		width := pt.R
		if width < 2 {
			width = 2
		}
		// One series per point carries the per-point radius.
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{pt.X, pt.X},
			YValues: []float64{pt.Y, pt.Y},
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    width,
			},
		})
	}
	xs := make([]float64, len(b.Points))
	ys := make([]float64, len(b.Points))
	for i, pt := range b.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	graph := gochart.Chart{
		Title:  p.Title,
		Width:  chartWidthPx,
		Height: chartHeightPx,
		Series: series,
	}
	if r := flatRange(xs); r != nil {
		graph.XAxis = gochart.XAxis{Range: r}
	}
	if r := flatRange(ys); r != nil {
		graph.YAxis = gochart.YAxis{Range: r}
	}
	return graph.Render(gochart.PNG, buf)
}
