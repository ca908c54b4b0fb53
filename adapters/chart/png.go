package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"phewasview/internal"
	"phewasview/internal/render"
)

// Renderer draws figures as PNG images
type Renderer struct {
	Width  int
	Height int
	log    *internal.Logger
}

// NewRenderer creates a renderer with the given canvas size; non-positive
// dimensions fall back to 1024x640
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 640
	}
	return &Renderer{Width: width, Height: height, log: internal.DefaultLogger.WithComponent("Chart")}
}

// RenderPNG writes fig to w. Empty figures become a blank canvas with the
// figure's message.
func (r *Renderer) RenderPNG(w io.Writer, fig render.Figure) error {
	if fig.Empty {
		return writeMessage(w, r.Width, r.Height, fig.Title, fig.Message)
	}

	var err error
	switch fig.Kind {
	case render.KindVolcano:
		err = r.volcano(w, fig)
	case render.KindBar:
		err = r.bar(w, fig)
	case render.KindHeatmap:
		err = r.heatmap(w, fig)
	case render.KindBubble:
		err = r.bubble(w, fig)
	default:
		err = fmt.Errorf("no PNG renderer for %q", fig.Kind)
	}
	if err != nil {
		r.log.Warn("%s render failed: %v", fig.Kind, err)
	}
	return err
}

func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

func (r *Renderer) volcano(w io.Writer, fig render.Figure) error {
	series := make([]chart.Series, 0, len(fig.Series)+1)
	maxY := 0.0
	for i, s := range fig.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
			maxY = math.Max(maxY, p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(chart.GetDefaultColor(i), 4),
		})
	}
	if fig.ThresholdY != nil {
		maxY = math.Max(maxY, *fig.ThresholdY)
		series = append(series, chart.ContinuousSeries{
			Name:    "threshold",
			XValues: []float64{-0.5, 3.5},
			YValues: []float64{*fig.ThresholdY, *fig.ThresholdY},
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  fig.XLabel,
			Ticks: toTicks(fig.XTicks),
			Range: &chart.ContinuousRange{Min: -0.5, Max: 3.5},
		},
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: paddedMax(maxY)},
		},
		Series: series,
	}
	if fig.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(chart.PNG, w)
}

// bar flattens the gene clusters into one bar chart, colouring bars by category
func (r *Renderer) bar(w io.Writer, fig render.Figure) error {
	bars := make([]chart.Value, 0)
	maxCount := 0
	for _, cluster := range fig.Clusters {
		for i, count := range cluster.Counts {
			label := ""
			if i == 0 {
				label = cluster.Gene
			}
			bars = append(bars, chart.Value{
				Value: float64(count),
				Label: label,
				Style: chart.Style{FillColor: chart.GetDefaultColor(i), StrokeColor: chart.GetDefaultColor(i)},
			})
			if count > maxCount {
				maxCount = count
			}
		}
	}

	ch := chart.BarChart{
		Title:      fig.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   barWidth(r.Width, len(bars)),
		BarSpacing: 6,
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) + 1},
		},
		Bars: bars,
	}
	if fig.ShowLegend {
		ch.Elements = []chart.Renderable{categoryKey(fig.Categories)}
	}
	return ch.Render(chart.PNG, w)
}

func (r *Renderer) bubble(w io.Writer, fig render.Figure) error {
	xs := make([]float64, len(fig.Bubbles))
	ys := make([]float64, len(fig.Bubbles))
	ticks := make([]chart.Tick, len(fig.Bubbles))
	minX, maxX := math.Inf(1), math.Inf(-1)
	for i, b := range fig.Bubbles {
		xs[i] = b.X
		ys[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: b.Description}
		minX, maxX = math.Min(minX, b.X), math.Max(maxX, b.X)
	}
	pad := math.Max((maxX-minX)*0.1, 1)

	bubbles := fig.Bubbles
	colorMin, colorMax := fig.ColorMin, fig.ColorMax
	style := chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
			return 2 + math.Sqrt(bubbles[index].Size)/2
		},
		DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			return viridis(bubbles[index].Color, colorMin, colorMax).WithAlpha(200)
		},
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 200, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  fig.XLabel,
			Range: &chart.ContinuousRange{Min: minX - pad, Max: maxX + pad},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: float64(len(fig.Bubbles))},
			Ticks: ticks,
		},
		Series: []chart.Series{chart.ContinuousSeries{Name: fig.Title, XValues: xs, YValues: ys, Style: style}},
	}
	return ch.Render(chart.PNG, w)
}

func toTicks(ticks []render.Tick) []chart.Tick {
	out := make([]chart.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = chart.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

// paddedMax leaves headroom above the tallest point and avoids a zero range
func paddedMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}

func barWidth(width, n int) int {
	if n == 0 {
		return 20
	}
	bw := (width - 120) / (n * 2)
	return int(math.Max(4, math.Min(float64(bw), 60)))
}

// viridis maps v into the colour scale, collapsing a zero-width range to its midpoint
func viridis(v, lo, hi float64) drawing.Color {
	if hi <= lo {
		return chart.Viridis(0.5, 0, 1)
	}
	return chart.Viridis(v, lo, hi)
}

// categoryKey draws a small colour key for the bar categories
func categoryKey(labels []string) chart.Renderable {
	return func(rdr chart.Renderer, box chart.Box, defaults chart.Style) {
		rdr.SetFont(defaults.GetFont())
		rdr.SetFontSize(9)
		x := box.Right - 170
		y := box.Top + 8
		for i, label := range labels {
			col := chart.GetDefaultColor(i)
			rdr.SetFillColor(col)
			rdr.SetStrokeColor(col)
			rdr.MoveTo(x, y+i*14)
			rdr.LineTo(x+10, y+i*14)
			rdr.LineTo(x+10, y+i*14+10)
			rdr.LineTo(x, y+i*14+10)
			rdr.Close()
			rdr.FillStroke()
			rdr.SetFontColor(chart.ColorBlack)
			rdr.Text(label, x+14, y+i*14+9)
		}
	}
}

// PNGBytes renders fig and returns the encoded image
func (r *Renderer) PNGBytes(fig render.Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderPNG(&buf, fig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
