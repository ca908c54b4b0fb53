package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"phewasview/domain/phewas"
	"phewasview/internal/testkit"
)

func TestLabelList(t *testing.T) {
	cat := &phewas.Catalog{Entries: map[string]phewas.OutcomeCatalogEntry{
		"a": {OutcomeID: "a", Description: "  angina ", AnalysisType: phewas.CVEndpoints},
		"b": {OutcomeID: "b", Description: "Myocardial infarction", AnalysisType: phewas.CVEndpoints},
		"c": {OutcomeID: "c", Label: "Atrial fibrillation", Description: "long text", AnalysisType: phewas.CVEndpoints},
		"d": {OutcomeID: "d", Description: "angina", AnalysisType: phewas.CVEndpoints},
		"e": {OutcomeID: "e", Description: "HDL", AnalysisType: phewas.ContinuousVariable},
		"f": {OutcomeID: "f", AnalysisType: phewas.CVEndpoints},
	}}

	got := LabelList(cat, phewas.CVEndpoints)
	assert.Equal(t, []string{"angina", "Atrial fibrillation", "f", "Myocardial infarction"}, got)

	assert.Equal(t, []string{"HDL"}, LabelList(cat, phewas.ContinuousVariable))
	assert.Empty(t, LabelList(cat, phewas.Phecodes))
}

func TestLabelListNilCatalog(t *testing.T) {
	assert.NotNil(t, LabelList(nil, phewas.Phecodes))
	assert.Empty(t, LabelList(nil, phewas.Phecodes))
}

func TestLabelListSampleCatalog(t *testing.T) {
	assert.Equal(t, []string{"Self-reported X"}, LabelList(testkit.SampleCatalog(), phewas.SelfReported))
	assert.Equal(t, []string{"HDL cholesterol", "LDL cholesterol"}, LabelList(testkit.SampleCatalog(), phewas.ContinuousVariable))
}
