package pipeline

import (
	"strings"

	"phewasview/domain/phewas"
)

// Enrich left-joins rows against the catalog on outcome ID and resolves a
// Description for every row. A nil catalog is allowed and produces
// descriptions from the rows alone.
func Enrich(rows []phewas.AssociationRow, cat *phewas.Catalog) []phewas.EnrichedRow {
	out := make([]phewas.EnrichedRow, len(rows))
	for i, row := range rows {
		out[i] = enrichRow(row, cat)
	}
	return out
}

// Reenrich recomputes descriptions of already-enriched rows. A row keeps its
// existing label when the catalog has nothing better than the outcome ID.
func Reenrich(rows []phewas.EnrichedRow, cat *phewas.Catalog) []phewas.EnrichedRow {
	out := make([]phewas.EnrichedRow, len(rows))
	for i, row := range rows {
		next := enrichRow(row.AssociationRow, cat)
		if next.Catalog == nil && row.Description != "" {
			next.Catalog = row.Catalog
			next.Description = row.Description
		}
		out[i] = next
	}
	return out
}

func enrichRow(row phewas.AssociationRow, cat *phewas.Catalog) phewas.EnrichedRow {
	er := phewas.EnrichedRow{AssociationRow: row}
	if entry, ok := cat.Lookup(row.OutcomeID); ok {
		er.Catalog = &entry
	}
	er.Description = describe(row, er.Catalog)
	return er
}

// describe picks catalog label, then the row's outcome_string, then the outcome ID
func describe(row phewas.AssociationRow, entry *phewas.OutcomeCatalogEntry) string {
	if entry != nil {
		if label := strings.TrimSpace(entry.BestLabel()); label != "" {
			return label
		}
	}
	if s := strings.TrimSpace(row.OutcomeString); s != "" {
		return s
	}
	return row.OutcomeID
}
