package phewas

import (
	"strings"
	"time"

	"phewasview/domain/core"
)

// AnalysisType is one of the four phenotype groupings reported by ExPheWAS
type AnalysisType string

const (
	ContinuousVariable AnalysisType = "CONTINUOUS_VARIABLE"
	CVEndpoints        AnalysisType = "CV_ENDPOINTS"
	SelfReported       AnalysisType = "SELF_REPORTED"
	Phecodes           AnalysisType = "PHECODES"
)

// AnalysisTypes lists the recognized categories in plotting order
var AnalysisTypes = []AnalysisType{ContinuousVariable, CVEndpoints, SelfReported, Phecodes}

var analysisLabels = map[AnalysisType]string{
	ContinuousVariable: "Continuous variables",
	CVEndpoints:        "Cardiovascular endpoints",
	SelfReported:       "Self reported",
	Phecodes:           "Phecodes",
}

// Position returns the fixed x position of the category, or -1 when unrecognized
func (a AnalysisType) Position() int {
	for i, t := range AnalysisTypes {
		if t == a {
			return i
		}
	}
	return -1
}

// IsRecognized reports whether a is one of the four known categories
func (a AnalysisType) IsRecognized() bool {
	return a.Position() >= 0
}

// Label returns the human-readable category name
func (a AnalysisType) Label() string {
	if l, ok := analysisLabels[a]; ok {
		return l
	}
	return string(a)
}

// ParseAnalysisType accepts the upstream enum name in any case
func ParseAnalysisType(s string) (AnalysisType, error) {
	a := AnalysisType(strings.ToUpper(strings.TrimSpace(s)))
	if !a.IsRecognized() {
		return "", core.ErrUnknownCategory
	}
	return a, nil
}

// Subset selects the sex stratification of the upstream analysis
type Subset string

const (
	SubsetBoth       Subset = "BOTH"
	SubsetMaleOnly   Subset = "MALE_ONLY"
	SubsetFemaleOnly Subset = "FEMALE_ONLY"
)

// ParseSubset coerces unknown input to BOTH
func ParseSubset(s string) Subset {
	switch Subset(strings.ToUpper(strings.TrimSpace(s))) {
	case SubsetMaleOnly:
		return SubsetMaleOnly
	case SubsetFemaleOnly:
		return SubsetFemaleOnly
	default:
		return SubsetBoth
	}
}

// Metric names the significance column used for thresholds and plots
type Metric string

const (
	MetricP Metric = "p"
	MetricQ Metric = "q"
)

// IsRecognized reports whether m is p or q
func (m Metric) IsRecognized() bool {
	return m == MetricP || m == MetricQ
}

// AssociationRow is one statistical test result. Pointer fields are absent when nil.
type AssociationRow struct {
	Gene          string       `json:"gene"`
	AnalysisType  AnalysisType `json:"analysis_type"`
	OutcomeID     string       `json:"outcome_id"`
	OutcomeString string       `json:"outcome_string,omitempty"`
	P             *float64     `json:"p,omitempty"`
	Q             *float64     `json:"q,omitempty"`
	NCases        *int64       `json:"n_cases,omitempty"`
	NControls     *int64       `json:"n_controls,omitempty"`
	N             *int64       `json:"n,omitempty"`
}

// Value returns the row's value for m and whether it is present
func (r AssociationRow) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricP:
		v = r.P
	case MetricQ:
		v = r.Q
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// HasSignificance reports whether the row carries p or q
func (r AssociationRow) HasSignificance() bool {
	return r.P != nil || r.Q != nil
}

// GeneOrUnknown groups rows without a gene under a shared placeholder
func (r AssociationRow) GeneOrUnknown() string {
	if r.Gene == "" {
		return "unknown"
	}
	return r.Gene
}

// OutcomeCatalogEntry holds the reference labels for one outcome
type OutcomeCatalogEntry struct {
	OutcomeID     string       `json:"outcome_id"`
	Description   string       `json:"description,omitempty"`
	OutcomeString string       `json:"outcome_string,omitempty"`
	Name          string       `json:"name,omitempty"`
	Label         string       `json:"label,omitempty"`
	Phenotype     string       `json:"phenotype,omitempty"`
	AnalysisType  AnalysisType `json:"analysis_type,omitempty"`
}

// CatalogColumns lists the descriptive columns in label priority order
var CatalogColumns = []string{"description", "outcome_string", "name", "label", "phenotype"}

// BestLabel returns the first non-empty descriptive column in priority order
func (e OutcomeCatalogEntry) BestLabel() string {
	for _, v := range []string{e.Description, e.OutcomeString, e.Name, e.Label, e.Phenotype} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Catalog is the outcome reference table, keyed by outcome ID
type Catalog struct {
	Entries map[string]OutcomeCatalogEntry
	// Columns records which recognized columns the upstream response carried
	Columns []string
}

// Lookup returns the entry for id; a nil catalog never matches
func (c *Catalog) Lookup(id string) (OutcomeCatalogEntry, bool) {
	if c == nil || c.Entries == nil {
		return OutcomeCatalogEntry{}, false
	}
	e, ok := c.Entries[id]
	return e, ok
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// EnrichedRow is an AssociationRow joined with its catalog entry
type EnrichedRow struct {
	AssociationRow
	Catalog     *OutcomeCatalogEntry `json:"-"`
	Description string               `json:"description"`
}

// ResultSet is everything fetched by one load action
type ResultSet struct {
	ID        core.ResultSetID `json:"id"`
	Subset    Subset           `json:"subset"`
	Genes     []string         `json:"genes"`
	Rows      []AssociationRow `json:"rows"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewResultSet creates an empty result set for subset
func NewResultSet(subset Subset) *ResultSet {
	return &ResultSet{
		ID:        core.NewResultSetID(),
		Subset:    subset,
		CreatedAt: time.Now(),
	}
}

// IsEmpty reports whether the set holds no rows
func (rs *ResultSet) IsEmpty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// GeneStatus records what happened to one requested gene during a load
type GeneStatus struct {
	Token     string `json:"token"`
	EnsemblID string `json:"ensembl_id,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Rows      int    `json:"rows"`
	Skipped   bool   `json:"skipped"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

// LoadReport is the per-gene status log of a load
type LoadReport struct {
	Genes []GeneStatus `json:"genes"`
	Log   []string     `json:"log"`
}

// AddLine appends one human-readable line
func (r *LoadReport) AddLine(line string) {
	r.Log = append(r.Log, line)
}
