package catalog

import (
	"sort"
	"strings"

	"phewasview/domain/phewas"
)

// LabelList returns the distinct labels of a category's outcomes, trimmed and
// sorted case-insensitively. These populate the per-category filter choices.
// Entries are matched on their analysis_type; a catalog without that column
// yields no labels.
func LabelList(cat *phewas.Catalog, category phewas.AnalysisType) []string {
	if cat.Len() == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	labels := make([]string, 0)
	for _, e := range cat.Entries {
		if e.AnalysisType != category {
			continue
		}
		label := strings.TrimSpace(entryLabel(e))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool {
		li, lj := strings.ToLower(labels[i]), strings.ToLower(labels[j])
		if li != lj {
			return li < lj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// entryLabel prefers the short display label over the long description
func entryLabel(e phewas.OutcomeCatalogEntry) string {
	for _, v := range []string{e.Label, e.Description, e.Name, e.OutcomeString} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return e.OutcomeID
}
