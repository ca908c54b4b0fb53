package render

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal/pipeline"
	"phewasview/internal/testkit"
)

func sampleFrame(t *testing.T, metric phewas.Metric, useLog bool) pipeline.PlotFrame {
	t.Helper()
	frame := pipeline.Project(testkit.SampleRows(), testkit.SampleCatalog(), pipeline.ProjectOptions{Metric: metric, Limit: 10})
	require.False(t, frame.IsEmpty())
	return pipeline.Prepare(frame, useLog)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Volcano ")
	require.NoError(t, err)
	assert.Equal(t, KindVolcano, k)

	_, err = ParseKind("pie")
	assert.True(t, errors.Is(err, core.ErrUnknownPlotKind))

	_, err = Build("pie", pipeline.PlotFrame{}, DefaultOptions())
	assert.True(t, core.IsInputError(err))
}

func TestEmptyFrames(t *testing.T) {
	for _, kind := range Kinds {
		fig, err := Build(kind, pipeline.PlotFrame{Metric: phewas.MetricP}, DefaultOptions())
		require.NoError(t, err, kind)
		assert.True(t, fig.Empty, kind)
		assert.Equal(t, NoDataMessage, fig.Message, kind)
		assert.Equal(t, kind, fig.Kind)
	}
}

func TestVolcano(t *testing.T) {
	frame := sampleFrame(t, phewas.MetricP, true)
	fig := Volcano(frame, DefaultOptions())

	require.Len(t, fig.Series, 2)
	assert.Equal(t, "APOB", fig.Series[0].Name)
	assert.Equal(t, "PCSK9", fig.Series[1].Name)
	assert.Len(t, fig.Series[0].Points, 2)
	assert.Len(t, fig.Series[1].Points, 4)
	require.NotNil(t, fig.ThresholdY)
	assert.InDelta(t, -math.Log10(0.05), *fig.ThresholdY, 1e-12)
	assert.Equal(t, "-log10(p)", fig.YLabel)
	assert.Len(t, fig.XTicks, 4)
	assert.Equal(t, "Cardiovascular endpoints", fig.XTicks[1].Label)

	raw := Volcano(sampleFrame(t, phewas.MetricP, false), DefaultOptions())
	assert.Equal(t, 0.05, *raw.ThresholdY)
	assert.Equal(t, "p", raw.YLabel)

	for _, s := range fig.Series {
		for _, p := range s.Points {
			assert.NotEmpty(t, p.Description)
		}
	}
}

func TestBarZeroFill(t *testing.T) {
	fig := Bar(sampleFrame(t, phewas.MetricQ, true), Options{})
	require.Len(t, fig.Clusters, 2)
	assert.Equal(t, BarCluster{Gene: "APOB", Counts: []int{1, 1, 0, 0}}, fig.Clusters[0])
	assert.Equal(t, BarCluster{Gene: "PCSK9", Counts: []int{2, 1, 0, 1}}, fig.Clusters[1])
	assert.Len(t, fig.Categories, 4)
	assert.False(t, fig.ShowLegend)
}

func TestHeatmapMissingCells(t *testing.T) {
	frame := sampleFrame(t, phewas.MetricP, true)
	fig := Heatmap(frame, DefaultOptions())

	require.Len(t, fig.Panels, 4)
	cont := fig.Panels[0]
	assert.Equal(t, phewas.ContinuousVariable, cont.Category)
	assert.Equal(t, []string{"APOB", "PCSK9"}, cont.Columns)
	require.Equal(t, []string{"HDL cholesterol", "LDL cholesterol"}, cont.Rows)
	require.NotNil(t, cont.Cells[0][0])
	require.NotNil(t, cont.Cells[0][1])
	assert.InDelta(t, 2, *cont.Cells[0][1], 1e-12)
	assert.Nil(t, cont.Cells[1][0], "APOB has no LDL row")
	require.NotNil(t, cont.Cells[1][1])

	phe := fig.Panels[3]
	assert.True(t, phe.IsEmpty(), "PHECODES rows lack p")

	data, err := json.Marshal(cont)
	require.NoError(t, err)
	assert.Contains(t, string(data), "null")

	assert.InDelta(t, 10, fig.ColorMax, 1e-9)
}

func TestHeatmapDuplicateKeepsFirst(t *testing.T) {
	frame := pipeline.PlotFrame{Metric: phewas.MetricP, Rows: []pipeline.PlotRow{
		{EnrichedRow: phewas.EnrichedRow{AssociationRow: phewas.AssociationRow{Gene: "G", AnalysisType: phewas.Phecodes}, Description: "D"}, X: 3, Y: 5},
		{EnrichedRow: phewas.EnrichedRow{AssociationRow: phewas.AssociationRow{Gene: "G", AnalysisType: phewas.Phecodes}, Description: "D"}, X: 3, Y: 1},
	}}
	fig := Heatmap(frame, Options{})
	require.Len(t, fig.Panels[3].Rows, 1)
	assert.Equal(t, 5.0, *fig.Panels[3].Cells[0][0])
}

func TestBubbleAxisRule(t *testing.T) {
	frame := sampleFrame(t, phewas.MetricP, true)

	cont := BubbleChart(frame, Options{Gene: "PCSK9", Category: phewas.ContinuousVariable})
	require.Len(t, cont.Bubbles, 2)
	assert.Equal(t, "Samples", cont.XLabel)
	assert.Equal(t, 350000.0, cont.Bubbles[0].X)
	assert.Equal(t, MaxBubbleSize, cont.Bubbles[0].Size)
	assert.InDelta(t, 349000.0/350000.0*MaxBubbleSize, cont.Bubbles[1].Size, 1e-9)

	cv := BubbleChart(frame, Options{Gene: "PCSK9", Category: phewas.CVEndpoints})
	require.Len(t, cv.Bubbles, 1)
	assert.Equal(t, "Controls", cv.XLabel)
	assert.Equal(t, 300000.0, cv.Bubbles[0].X)
	assert.Equal(t, 12000.0, cv.Bubbles[0].Cases)
	assert.Equal(t, MaxBubbleSize, cv.Bubbles[0].Size)
	assert.InDelta(t, 10, cv.Bubbles[0].Color, 1e-9)
}

func TestBubbleMatchesGeneCaseInsensitively(t *testing.T) {
	frame := pipeline.PlotFrame{Metric: phewas.MetricP, Rows: []pipeline.PlotRow{
		{EnrichedRow: phewas.EnrichedRow{AssociationRow: phewas.AssociationRow{Gene: "C9orf72", AnalysisType: phewas.ContinuousVariable, N: testkit.I(100)}, Description: "LDL cholesterol"}, Y: 2},
	}}

	for _, want := range []string{"C9orf72", "C9ORF72", " c9orf72 "} {
		fig := BubbleChart(frame, Options{Gene: want, Category: phewas.ContinuousVariable})
		require.Len(t, fig.Bubbles, 1, want)
		assert.Equal(t, "C9orf72: Continuous variables", fig.Title, want)
	}
}

func TestBubbleDropsRowsWithoutX(t *testing.T) {
	frame := pipeline.PlotFrame{Metric: phewas.MetricP, Rows: []pipeline.PlotRow{
		{EnrichedRow: phewas.EnrichedRow{AssociationRow: phewas.AssociationRow{Gene: "G", AnalysisType: phewas.SelfReported, NCases: testkit.I(10)}, Description: "no controls"}, X: 2},
		{EnrichedRow: phewas.EnrichedRow{AssociationRow: phewas.AssociationRow{Gene: "G", AnalysisType: phewas.SelfReported, NCases: testkit.I(5), NControls: testkit.I(100)}, Description: "ok"}, X: 2},
	}}
	fig := BubbleChart(frame, Options{Category: phewas.SelfReported})
	require.Len(t, fig.Bubbles, 1)
	assert.Equal(t, "ok", fig.Bubbles[0].Description)
	assert.Equal(t, MaxBubbleSize, fig.Bubbles[0].Size)

	none := BubbleChart(frame, Options{Gene: "OTHER", Category: phewas.SelfReported})
	assert.True(t, none.Empty)
}
