package pipeline

import (
	"strings"

	"phewasview/domain/phewas"
)

// AllowList is a two-state description constraint. The zero value is
// unconstrained; a restricted list with no values admits nothing.
type AllowList struct {
	restricted bool
	values     map[string]struct{}
}

// Unconstrained admits every description
func Unconstrained() AllowList {
	return AllowList{}
}

// RestrictedTo admits only the given descriptions. Blank values are ignored,
// so RestrictedTo() and RestrictedTo("") both admit nothing.
func RestrictedTo(values ...string) AllowList {
	a := AllowList{restricted: true, values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			a.values[v] = struct{}{}
		}
	}
	return a
}

// IsRestricted reports whether the list constrains anything
func (a AllowList) IsRestricted() bool {
	return a.restricted
}

// Allows checks one description under the given match mode
func (a AllowList) Allows(description string, mode MatchMode) bool {
	if !a.restricted {
		return true
	}
	switch mode {
	case MatchSubstring:
		d := strings.ToLower(description)
		for v := range a.values {
			if strings.Contains(d, strings.ToLower(v)) {
				return true
			}
		}
		return false
	default:
		_, ok := a.values[description]
		return ok
	}
}

// MatchMode selects how descriptions are compared against an allow-list
type MatchMode int

const (
	MatchExact MatchMode = iota
	MatchSubstring
)

// ParseMatchMode accepts "substring" (or "contains"); anything else is exact
func ParseMatchMode(s string) MatchMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "substring", "contains":
		return MatchSubstring
	default:
		return MatchExact
	}
}

func (m MatchMode) String() string {
	if m == MatchSubstring {
		return "substring"
	}
	return "exact"
}

var filterKeys = map[string]phewas.AnalysisType{
	"filter_cont": phewas.ContinuousVariable,
	"filter_cv":   phewas.CVEndpoints,
	"filter_self": phewas.SelfReported,
	"filter_phe":  phewas.Phecodes,
}

// FilterKeys lists the request keys for the four category filters in category order
var FilterKeys = []string{"filter_cont", "filter_cv", "filter_self", "filter_phe"}

// ParseFilterKey maps filter_cont/filter_cv/filter_self/filter_phe to a category
func ParseFilterKey(key string) (phewas.AnalysisType, bool) {
	t, ok := filterKeys[strings.ToLower(strings.TrimSpace(key))]
	return t, ok
}

// CategoryFilters holds one independent allow-list per category
type CategoryFilters struct {
	Mode  MatchMode
	lists map[phewas.AnalysisType]AllowList
}

// NewCategoryFilters creates filters with every category unconstrained
func NewCategoryFilters(mode MatchMode) *CategoryFilters {
	return &CategoryFilters{Mode: mode, lists: make(map[phewas.AnalysisType]AllowList)}
}

// Set replaces the allow-list of one category
func (f *CategoryFilters) Set(category phewas.AnalysisType, list AllowList) *CategoryFilters {
	if f.lists == nil {
		f.lists = make(map[phewas.AnalysisType]AllowList)
	}
	f.lists[category] = list
	return f
}

// For returns the allow-list of a category; absent categories are unconstrained
func (f *CategoryFilters) For(category phewas.AnalysisType) AllowList {
	if f == nil {
		return Unconstrained()
	}
	return f.lists[category]
}

// Active reports whether any category is restricted
func (f *CategoryFilters) Active() bool {
	if f == nil {
		return false
	}
	for _, l := range f.lists {
		if l.IsRestricted() {
			return true
		}
	}
	return false
}

// Allows reports whether a row survives its own category's allow-list.
// Other categories' lists never affect it.
func (f *CategoryFilters) Allows(row phewas.EnrichedRow) bool {
	if f == nil {
		return true
	}
	return f.For(row.AnalysisType).Allows(row.Description, f.Mode)
}

// ApplyCategoryFilters keeps the rows that pass their category's allow-list
func ApplyCategoryFilters(rows []phewas.EnrichedRow, filters *CategoryFilters) []phewas.EnrichedRow {
	out := make([]phewas.EnrichedRow, 0, len(rows))
	for _, r := range rows {
		if filters.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}
