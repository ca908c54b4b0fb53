package render

import (
	"fmt"
	"strings"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal/pipeline"
)

// Kind names a chart type
type Kind string

const (
	KindVolcano Kind = "volcano"
	KindBar     Kind = "bar"
	KindHeatmap Kind = "heatmap"
	KindBubble  Kind = "bubble"
)

// Kinds lists every chart type
var Kinds = []Kind{KindVolcano, KindBar, KindHeatmap, KindBubble}

// ParseKind accepts a chart name in any case
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownPlotKind, s)
}

// MaxBubbleSize is the size given to the largest case count
const MaxBubbleSize = 1000.0

// NoDataMessage is shown for figures with nothing to draw
const NoDataMessage = "No data to plot."

// Options are the display flags shared by the builders
type Options struct {
	ShowLegend bool
	Threshold  float64
	// Limit is the per-(gene, category) cap, shown in titles
	Limit int
	// Gene and Category select the bubble chart subject
	Gene     string
	Category phewas.AnalysisType
}

// DefaultOptions returns legend on and a 0.05 threshold
func DefaultOptions() Options {
	return Options{ShowLegend: true, Threshold: pipeline.DefaultThreshold}
}

// Tick is a labelled axis position
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Point is one scatter marker
type Point struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	OutcomeID   string  `json:"outcome_id"`
	Description string  `json:"description"`
}

// Series is one named group of points
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// BarCluster holds one gene's counts, indexed like phewas.AnalysisTypes
type BarCluster struct {
	Gene   string `json:"gene"`
	Counts []int  `json:"counts"`
}

// HeatmapPanel is one category's Description x gene matrix.
// A nil cell means the pair was not observed.
type HeatmapPanel struct {
	Category phewas.AnalysisType `json:"category"`
	Title    string              `json:"title"`
	Rows     []string            `json:"rows"`
	Columns  []string            `json:"columns"`
	Cells    [][]*float64        `json:"cells"`
}

// IsEmpty reports whether the panel has no cells
func (p HeatmapPanel) IsEmpty() bool {
	return len(p.Rows) == 0 || len(p.Columns) == 0
}

// Bubble is one marker of the bubble chart
type Bubble struct {
	Description string  `json:"description"`
	OutcomeID   string  `json:"outcome_id"`
	X           float64 `json:"x"`
	Cases       float64 `json:"cases"`
	Size        float64 `json:"size"`
	Color       float64 `json:"color"`
}

// Figure is a renderable chart description. Only the fields of its Kind are set.
type Figure struct {
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Empty      bool   `json:"empty"`
	Message    string `json:"message,omitempty"`
	ShowLegend bool   `json:"show_legend"`
	XLabel     string `json:"x_label,omitempty"`
	YLabel     string `json:"y_label,omitempty"`
	XTicks     []Tick `json:"x_ticks,omitempty"`

	Series     []Series `json:"series,omitempty"`
	ThresholdY *float64 `json:"threshold_y,omitempty"`

	Categories []string     `json:"categories,omitempty"`
	Clusters   []BarCluster `json:"clusters,omitempty"`

	Panels []HeatmapPanel `json:"panels,omitempty"`

	Bubbles  []Bubble `json:"bubbles,omitempty"`
	ColorMin float64  `json:"color_min,omitempty"`
	ColorMax float64  `json:"color_max,omitempty"`
}

func emptyFigure(kind Kind, title string) Figure {
	return Figure{Kind: kind, Title: title, Empty: true, Message: NoDataMessage}
}

// Build dispatches to the builder of kind
func Build(kind Kind, frame pipeline.PlotFrame, opts Options) (Figure, error) {
	switch kind {
	case KindVolcano:
		return Volcano(frame, opts), nil
	case KindBar:
		return Bar(frame, opts), nil
	case KindHeatmap:
		return Heatmap(frame, opts), nil
	case KindBubble:
		return BubbleChart(frame, opts), nil
	default:
		return Figure{}, fmt.Errorf("%w: %q", core.ErrUnknownPlotKind, kind)
	}
}

// categoryTicks labels x positions 0..3
func categoryTicks() []Tick {
	ticks := make([]Tick, len(phewas.AnalysisTypes))
	for i, t := range phewas.AnalysisTypes {
		ticks[i] = Tick{Value: float64(i), Label: t.Label()}
	}
	return ticks
}

func categoryLabels() []string {
	labels := make([]string, len(phewas.AnalysisTypes))
	for i, t := range phewas.AnalysisTypes {
		labels[i] = t.Label()
	}
	return labels
}

// metricLabel is the y axis caption, e.g. "-log10(q)"
func metricLabel(frame pipeline.PlotFrame) string {
	if frame.UseLog {
		return fmt.Sprintf("-log10(%s)", frame.Metric)
	}
	return string(frame.Metric)
}
