package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"phewasview/domain/phewas"
)

// DefaultThreshold is used when a threshold cannot be parsed
const DefaultThreshold = 0.05

// CoerceLimit floors n to at least 1
func CoerceLimit(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ParseLimit reads a per-gene row cap. Blank input returns fallback; anything
// else that is not a positive number becomes 1. Fractions are truncated.
func ParseLimit(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return CoerceLimit(fallback)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParseThreshold reads a significance threshold, defaulting to 0.05 and
// clamping into [0, 1]
func ParseThreshold(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return DefaultThreshold
	}
	return math.Min(math.Max(f, 0), 1)
}

// Rank returns at most n rows per gene for one category, ordered by
// significance. Rows lacking both p and q are excluded.
func Rank(rows []phewas.AssociationRow, category phewas.AnalysisType, n int) []phewas.AssociationRow {
	n = CoerceLimit(n)

	selected := make([]phewas.AssociationRow, 0)
	for _, r := range rows {
		if r.AnalysisType == category && r.HasSignificance() {
			selected = append(selected, r)
		}
	}

	order := significanceOrder(len(selected), func(i int) phewas.AssociationRow { return selected[i] })

	perGene := make(map[string]int)
	out := make([]phewas.AssociationRow, 0, len(selected))
	for _, idx := range order {
		r := selected[idx]
		gene := r.GeneOrUnknown()
		if perGene[gene] >= n {
			continue
		}
		perGene[gene]++
		out = append(out, r)
	}
	return out
}

// significanceOrder returns a stable permutation of [0,n) sorted by q then p.
// When no row carries q, rows are sorted by p alone. Missing values sort last.
func significanceOrder(n int, at func(int) phewas.AssociationRow) []int {
	order := make([]int, n)
	anyQ := false
	for i := range order {
		order[i] = i
		if at(i).Q != nil {
			anyQ = true
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := at(order[a]), at(order[b])
		if anyQ {
			if c := compareOptional(ra.Q, rb.Q); c != 0 {
				return c < 0
			}
		}
		return compareOptional(ra.P, rb.P) < 0
	})
	return order
}

// compareOptional orders present values ascending, absent values last
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
