package pipeline

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"phewasview/domain/phewas"
)

// PlotRow is an enriched row positioned for plotting
type PlotRow struct {
	phewas.EnrichedRow
	X    int     `json:"x"`
	Vals float64 `json:"vals"`
	Y    float64 `json:"y"`
	XJ   float64 `json:"xj"`
}

// PlotFrame is the projected input of every chart
type PlotFrame struct {
	Metric phewas.Metric `json:"metric"`
	UseLog bool          `json:"use_log"`
	Rows   []PlotRow     `json:"rows"`
}

// IsEmpty reports whether no rows survived projection
func (f PlotFrame) IsEmpty() bool {
	return len(f.Rows) == 0
}

// Genes returns the distinct genes of the frame in sorted order
func (f PlotFrame) Genes() []string {
	seen := make(map[string]bool)
	genes := make([]string, 0)
	for _, r := range f.Rows {
		g := r.GeneOrUnknown()
		if !seen[g] {
			seen[g] = true
			genes = append(genes, g)
		}
	}
	sort.Strings(genes)
	return genes
}

// Select returns a frame holding only the rows of gene and category.
// Gene symbols match case-insensitively.
func (f PlotFrame) Select(gene string, category phewas.AnalysisType) PlotFrame {
	out := PlotFrame{Metric: f.Metric, UseLog: f.UseLog, Rows: make([]PlotRow, 0)}
	for _, r := range f.Rows {
		if strings.EqualFold(r.GeneOrUnknown(), gene) && r.AnalysisType == category {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// FrameSummary describes the spread of the display values
type FrameSummary struct {
	Rows   int     `json:"rows"`
	Genes  int     `json:"genes"`
	MinY   float64 `json:"min_y"`
	MedY   float64 `json:"median_y"`
	MaxY   float64 `json:"max_y"`
	Metric string  `json:"metric"`
}

// Summary computes row counts and the min/median/max of Y
func (f PlotFrame) Summary() FrameSummary {
	s := FrameSummary{Rows: len(f.Rows), Genes: len(f.Genes()), Metric: string(f.Metric)}
	if f.IsEmpty() {
		return s
	}
	ys := make(stats.Float64Data, len(f.Rows))
	for i, r := range f.Rows {
		ys[i] = r.Y
	}
	s.MinY, _ = ys.Min()
	s.MedY, _ = ys.Median()
	s.MaxY, _ = ys.Max()
	return s
}

// ProjectOptions selects the metric, the per-(gene, category) cap and the
// optional category filters
type ProjectOptions struct {
	Metric  phewas.Metric
	Limit   int
	Filters *CategoryFilters
}

type groupKey struct {
	gene     string
	category phewas.AnalysisType
}

// Project turns raw rows into a plot frame: enrich, drop rows missing the
// metric, keep the top Limit rows per (gene, category), keep the four known
// categories, position them, then apply category filters. Vals holds the raw
// metric; call ApplyScale and AddJitter to fill Y and XJ.
func Project(rows []phewas.AssociationRow, cat *phewas.Catalog, opts ProjectOptions) PlotFrame {
	frame := PlotFrame{Metric: opts.Metric, Rows: make([]PlotRow, 0)}
	if !opts.Metric.IsRecognized() {
		return frame
	}
	limit := CoerceLimit(opts.Limit)

	enriched := Enrich(rows, cat)
	withMetric := make([]phewas.EnrichedRow, 0, len(enriched))
	for _, er := range enriched {
		if _, ok := er.Value(opts.Metric); ok {
			withMetric = append(withMetric, er)
		}
	}

	order := significanceOrder(len(withMetric), func(i int) phewas.AssociationRow {
		return withMetric[i].AssociationRow
	})

	counts := make(map[groupKey]int)
	for _, idx := range order {
		er := withMetric[idx]
		key := groupKey{gene: er.GeneOrUnknown(), category: er.AnalysisType}
		if counts[key] >= limit {
			continue
		}
		counts[key]++

		x := er.AnalysisType.Position()
		if x < 0 {
			continue
		}
		if !opts.Filters.Allows(er) {
			continue
		}
		v, _ := er.Value(opts.Metric)
		frame.Rows = append(frame.Rows, PlotRow{EnrichedRow: er, X: x, Vals: v, XJ: float64(x)})
	}
	return frame
}
