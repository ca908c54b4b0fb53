package exphewas

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
)

// unwrapRows returns the row array of a payload, unwrapping a {"results": [...]} envelope.
// A bare object without the envelope is treated as a single row.
func unwrapRows(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", core.ErrMalformedPayload)
	}

	data := gjson.ParseBytes(body)
	if data.IsObject() {
		if results := data.Get("results"); results.Exists() {
			data = results
		}
	}

	switch {
	case data.IsArray():
		return data.Array(), nil
	case data.IsObject():
		return []gjson.Result{data}, nil
	case data.Type == gjson.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected array or object, got %s", core.ErrMalformedPayload, data.Type)
	}
}

// decodeRows converts upstream result objects into optional-field rows
func decodeRows(items []gjson.Result) []phewas.AssociationRow {
	rows := make([]phewas.AssociationRow, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		rows = append(rows, decodeRow(item))
	}
	return rows
}

func decodeRow(item gjson.Result) phewas.AssociationRow {
	return phewas.AssociationRow{
		AnalysisType:  phewas.AnalysisType(optionalString(item.Get("analysis_type"))),
		OutcomeID:     firstString(item, "outcome_id", "outcome", "id"),
		OutcomeString: optionalString(item.Get("outcome_string")),
		P:             optionalFloat(item.Get("p")),
		Q:             optionalFloat(item.Get("q")),
		NCases:        optionalInt(item.Get("n_cases")),
		NControls:     optionalInt(item.Get("n_controls")),
		N:             optionalInt(item.Get("n")),
	}
}

// decodeCatalog builds the outcome catalog, renaming id to outcome_id
func decodeCatalog(items []gjson.Result) *phewas.Catalog {
	cat := &phewas.Catalog{Entries: make(map[string]phewas.OutcomeCatalogEntry, len(items))}
	seen := make(map[string]bool)

	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		id := firstString(item, "outcome_id", "id")
		if id == "" {
			continue
		}
		for _, col := range phewas.CatalogColumns {
			if v := item.Get(col); v.Exists() && v.Type != gjson.Null {
				seen[col] = true
			}
		}
		if _, dup := cat.Entries[id]; dup {
			continue
		}
		cat.Entries[id] = phewas.OutcomeCatalogEntry{
			OutcomeID:     id,
			Description:   optionalString(item.Get("description")),
			OutcomeString: optionalString(item.Get("outcome_string")),
			Name:          optionalString(item.Get("name")),
			Label:         optionalString(item.Get("label")),
			Phenotype:     optionalString(item.Get("phenotype")),
			AnalysisType:  phewas.AnalysisType(optionalString(item.Get("analysis_type"))),
		}
	}

	for _, col := range phewas.CatalogColumns {
		if seen[col] {
			cat.Columns = append(cat.Columns, col)
		}
	}
	return cat
}

func firstString(item gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := optionalString(item.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

func optionalString(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func optionalFloat(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func optionalInt(v gjson.Result) *int64 {
	f := optionalFloat(v)
	if f == nil || math.IsInf(*f, 0) {
		return nil
	}
	n := int64(*f)
	return &n
}
