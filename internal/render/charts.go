package render

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"phewasview/domain/phewas"
	"phewasview/internal/pipeline"
)

// Volcano builds one scatter series per gene at (XJ, Y) with a horizontal
// significance line
func Volcano(frame pipeline.PlotFrame, opts Options) Figure {
	title := fmt.Sprintf("%s by analysis type", metricLabel(frame))
	if opts.Limit > 0 {
		title += fmt.Sprintf(" (top %d/gene/group)", opts.Limit)
	}
	if frame.IsEmpty() {
		return emptyFigure(KindVolcano, title)
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = pipeline.DefaultThreshold
	}
	line := pipeline.ThresholdLine(threshold, frame.UseLog)

	fig := Figure{
		Kind:       KindVolcano,
		Title:      title,
		ShowLegend: opts.ShowLegend,
		XLabel:     "Category",
		YLabel:     metricLabel(frame),
		XTicks:     categoryTicks(),
		ThresholdY: &line,
	}
	for _, gene := range frame.Genes() {
		s := Series{Name: gene, Points: make([]Point, 0)}
		for _, r := range frame.Rows {
			if r.GeneOrUnknown() != gene {
				continue
			}
			s.Points = append(s.Points, Point{X: r.XJ, Y: r.Y, OutcomeID: r.OutcomeID, Description: r.Description})
		}
		fig.Series = append(fig.Series, s)
	}
	return fig
}

// Bar counts rows per (gene, category). Every gene gets one count per
// category, zero when absent.
func Bar(frame pipeline.PlotFrame, opts Options) Figure {
	title := "Associations per category"
	if frame.IsEmpty() {
		return emptyFigure(KindBar, title)
	}

	fig := Figure{
		Kind:       KindBar,
		Title:      title,
		ShowLegend: opts.ShowLegend,
		XLabel:     "Gene",
		YLabel:     "Count",
		Categories: categoryLabels(),
	}
	for _, gene := range frame.Genes() {
		counts := make([]int, len(phewas.AnalysisTypes))
		for _, r := range frame.Rows {
			if r.GeneOrUnknown() == gene && r.X >= 0 && r.X < len(counts) {
				counts[r.X]++
			}
		}
		fig.Clusters = append(fig.Clusters, BarCluster{Gene: gene, Counts: counts})
	}
	return fig
}

// Heatmap builds one Description x gene panel per category, in category
// order. Unobserved pairs stay nil; a repeated pair keeps its first value.
func Heatmap(frame pipeline.PlotFrame, opts Options) Figure {
	title := fmt.Sprintf("Heatmap of %s", metricLabel(frame))
	if frame.IsEmpty() {
		return emptyFigure(KindHeatmap, title)
	}

	genes := frame.Genes()
	col := make(map[string]int, len(genes))
	for i, g := range genes {
		col[g] = i
	}

	fig := Figure{Kind: KindHeatmap, Title: title, ShowLegend: opts.ShowLegend, YLabel: metricLabel(frame)}
	values := make(stats.Float64Data, 0, len(frame.Rows))

	for _, category := range phewas.AnalysisTypes {
		panel := HeatmapPanel{Category: category, Title: category.Label(), Rows: []string{}, Columns: []string{}, Cells: [][]*float64{}}
		rowIndex := make(map[string]int)

		for _, r := range frame.Rows {
			if r.AnalysisType != category {
				continue
			}
			if _, ok := rowIndex[r.Description]; !ok {
				rowIndex[r.Description] = len(panel.Rows)
				panel.Rows = append(panel.Rows, r.Description)
				panel.Cells = append(panel.Cells, make([]*float64, len(genes)))
			}
			cell := &panel.Cells[rowIndex[r.Description]][col[r.GeneOrUnknown()]]
			if *cell != nil {
				continue
			}
			y := r.Y
			*cell = &y
			values = append(values, y)
		}
		if len(panel.Rows) > 0 {
			panel.Columns = genes
		}
		fig.Panels = append(fig.Panels, panel)
	}

	fig.ColorMin, _ = values.Min()
	fig.ColorMax, _ = values.Max()
	return fig
}

// BubbleChart plots one gene within one category. x is the control count, or
// the sample count for continuous variables; size is proportional to the
// case count (sample count for continuous variables); color is Y.
func BubbleChart(frame pipeline.PlotFrame, opts Options) Figure {
	gene := bubbleGene(frame, opts.Gene)
	category := opts.Category
	if !category.IsRecognized() {
		category = phewas.ContinuousVariable
	}

	title := fmt.Sprintf("%s: %s", gene, category.Label())
	sub := frame.Select(gene, category)
	xLabel := "Controls"
	if category == phewas.ContinuousVariable {
		xLabel = "Samples"
	}

	bubbles := make([]Bubble, 0, len(sub.Rows))
	cases := make(stats.Float64Data, 0, len(sub.Rows))
	colors := make(stats.Float64Data, 0, len(sub.Rows))
	for _, r := range sub.Rows {
		x, ok := bubbleX(r.AssociationRow, category)
		if !ok {
			continue
		}
		c := bubbleCases(r.AssociationRow, category)
		bubbles = append(bubbles, Bubble{
			Description: r.Description,
			OutcomeID:   r.OutcomeID,
			X:           x,
			Cases:       c,
			Color:       r.Y,
		})
		cases = append(cases, c)
		colors = append(colors, r.Y)
	}
	if len(bubbles) == 0 {
		fig := emptyFigure(KindBubble, title)
		fig.XLabel = xLabel
		return fig
	}

	maxCases, _ := cases.Max()
	for i := range bubbles {
		if maxCases > 0 {
			bubbles[i].Size = bubbles[i].Cases / maxCases * MaxBubbleSize
		}
	}

	fig := Figure{
		Kind:       KindBubble,
		Title:      title,
		ShowLegend: opts.ShowLegend,
		XLabel:     xLabel,
		YLabel:     "Description",
		Bubbles:    bubbles,
	}
	fig.ColorMin, _ = colors.Min()
	fig.ColorMax, _ = colors.Max()
	return fig
}

// bubbleGene returns the frame's spelling of want, the first gene when want
// is blank, or want itself when no gene matches
func bubbleGene(frame pipeline.PlotFrame, want string) string {
	want = strings.TrimSpace(want)
	genes := frame.Genes()
	if want == "" {
		if len(genes) > 0 {
			return genes[0]
		}
		return ""
	}
	for _, g := range genes {
		if strings.EqualFold(g, want) {
			return g
		}
	}
	return want
}

func bubbleX(r phewas.AssociationRow, category phewas.AnalysisType) (float64, bool) {
	v := r.NControls
	if category == phewas.ContinuousVariable {
		v = r.N
	}
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

func bubbleCases(r phewas.AssociationRow, category phewas.AnalysisType) float64 {
	v := r.NCases
	if category == phewas.ContinuousVariable {
		v = r.N
	}
	if v == nil {
		return 0
	}
	return float64(*v)
}
