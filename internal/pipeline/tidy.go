package pipeline

import (
	"strconv"

	"phewasview/domain/phewas"
)

// Display column names
const (
	ColGene        = "Gene"
	ColOutcomeID   = "Outcome ID"
	ColDescription = "Description"
	ColP           = "p"
	ColQ           = "q"
)

// TableRow is one row of the display schema
type TableRow struct {
	Gene        string   `json:"gene"`
	OutcomeID   string   `json:"outcome_id"`
	Description string   `json:"description"`
	P           *float64 `json:"p,omitempty"`
	Q           *float64 `json:"q,omitempty"`
}

// Table is the minimal display projection. p and q appear in Columns only
// when some source row carried them.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// HasColumn reports whether name is part of the header
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Records renders the table as string cells, header first. Missing values are blank.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			switch c {
			case ColGene:
				rec = append(rec, r.Gene)
			case ColOutcomeID:
				rec = append(rec, r.OutcomeID)
			case ColDescription:
				rec = append(rec, r.Description)
			case ColP:
				rec = append(rec, formatOptional(r.P))
			case ColQ:
				rec = append(rec, formatOptional(r.Q))
			}
		}
		out = append(out, rec)
	}
	return out
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// TidyOptions controls threshold and description filtering
type TidyOptions struct {
	Metric    phewas.Metric
	Threshold *float64
	Filter    AllowList
}

// Tidy enriches rows and projects them to Gene, Outcome ID, Description, p, q.
// A threshold applies only when the metric's column is present; rows missing
// the metric are then dropped.
func Tidy(rows []phewas.AssociationRow, cat *phewas.Catalog, opts TidyOptions) Table {
	if len(rows) == 0 {
		return Table{
			Columns: []string{ColGene, ColOutcomeID, ColDescription, ColP, ColQ},
			Rows:    []TableRow{},
		}
	}

	hasP, hasQ := false, false
	for _, r := range rows {
		hasP = hasP || r.P != nil
		hasQ = hasQ || r.Q != nil
	}
	columns := []string{ColGene, ColOutcomeID, ColDescription}
	if hasP {
		columns = append(columns, ColP)
	}
	if hasQ {
		columns = append(columns, ColQ)
	}

	applyThreshold := opts.Threshold != nil &&
		((opts.Metric == phewas.MetricP && hasP) || (opts.Metric == phewas.MetricQ && hasQ))

	out := make([]TableRow, 0, len(rows))
	for _, er := range Enrich(rows, cat) {
		if applyThreshold {
			v, ok := er.Value(opts.Metric)
			if !ok || !(v < *opts.Threshold) {
				continue
			}
		}
		if !opts.Filter.Allows(er.Description, MatchExact) {
			continue
		}
		tr := TableRow{
			Gene:        er.Gene,
			OutcomeID:   er.OutcomeID,
			Description: er.Description,
		}
		if hasP {
			tr.P = er.P
		}
		if hasQ {
			tr.Q = er.Q
		}
		out = append(out, tr)
	}
	return Table{Columns: columns, Rows: out}
}
