package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal/catalog"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/pipeline"
	"phewasview/internal/render"
	"phewasview/internal/session"
	"phewasview/internal/testkit"
)

func newExplore(t *testing.T, withCatalog bool) (*ExploreService, core.SessionID) {
	t.Helper()
	_, client := newFakeClient(t)
	cache := catalog.NewCache(nil)
	if withCatalog {
		cache = catalog.NewCache(client)
	}
	svc := NewExploreService(NewLoadService(client, 2), session.NewStore(), cache, DefaultDefaults())
	sid := core.NewSessionID()
	svc.Load(context.Background(), sid, []string{"PCSK9", "APOB"}, phewas.SubsetBoth)
	return svc, sid
}

func TestExplore_MissingSession(t *testing.T) {
	svc, _ := newExplore(t, true)
	_, err := svc.Table(context.Background(), core.NewSessionID(), TableRequest{Category: phewas.ContinuousVariable})
	assert.ErrorIs(t, err, core.ErrResultSetNotFound)
	assert.True(t, core.IsNotFoundError(err))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestExplore_TableTopPerGene(t *testing.T) {
	svc, sid := newExplore(t, true)

	table, err := svc.Table(context.Background(), sid, TableRequest{Category: phewas.ContinuousVariable, Limit: 1})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "PCSK9", table.Rows[0].Gene)
	assert.Equal(t, "APOB", table.Rows[1].Gene)
	assert.Equal(t, "HDL cholesterol", table.Rows[0].Description)
	assert.Equal(t, []string{pipeline.ColGene, pipeline.ColOutcomeID, pipeline.ColDescription, pipeline.ColP, pipeline.ColQ}, table.Columns)
}

func TestExplore_TableThreshold(t *testing.T) {
	svc, sid := newExplore(t, true)
	threshold := 0.05

	table, err := svc.Table(context.Background(), sid, TableRequest{
		Category:  phewas.ContinuousVariable,
		Limit:     5,
		Metric:    phewas.MetricP,
		Threshold: &threshold,
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "O1", table.Rows[0].OutcomeID)
	assert.Equal(t, "PCSK9", table.Rows[0].Gene)
}

func TestExplore_TableUnknownCategory(t *testing.T) {
	svc, sid := newExplore(t, true)
	_, err := svc.Table(context.Background(), sid, TableRequest{Category: "OTHER"})
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestExplore_TableWithoutCatalog(t *testing.T) {
	svc, sid := newExplore(t, false)

	table, err := svc.Table(context.Background(), sid, TableRequest{Category: phewas.CVEndpoints})
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)
	assert.Equal(t, "O3", table.Rows[0].Description)
}

func TestExplore_Export(t *testing.T) {
	svc, sid := newExplore(t, true)

	table, err := svc.ExportTable(context.Background(), sid)
	require.NoError(t, err)
	assert.Len(t, table.Rows, len(testkit.SampleRows()))
}

func TestExplore_PlotVolcano(t *testing.T) {
	svc, sid := newExplore(t, true)

	fig, err := svc.Plot(context.Background(), sid, PlotRequest{Kind: render.KindVolcano, Options: render.DefaultOptions()})
	require.NoError(t, err)
	assert.False(t, fig.Empty)
	assert.Equal(t, "p by analysis type (top 10/gene/group)", fig.Title)
	require.Len(t, fig.Series, 2)
	assert.Equal(t, "APOB", fig.Series[0].Name)
	assert.Equal(t, "PCSK9", fig.Series[1].Name)
}

func TestExplore_PlotExplicitLimit(t *testing.T) {
	svc, sid := newExplore(t, true)

	fig, err := svc.Plot(context.Background(), sid, PlotRequest{Kind: render.KindVolcano, Limit: 1, Options: render.DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, "p by analysis type (top 1/gene/group)", fig.Title)
	for _, series := range fig.Series {
		perCategory := make(map[int]int)
		for _, p := range series.Points {
			perCategory[int(math.Round(p.X))]++
		}
		for x, n := range perCategory {
			assert.Equal(t, 1, n, "%s category %d", series.Name, x)
		}
	}
}

func TestExplore_PlotUnknownKind(t *testing.T) {
	svc, sid := newExplore(t, true)
	_, err := svc.Plot(context.Background(), sid, PlotRequest{Kind: "pie"})
	assert.ErrorIs(t, err, core.ErrUnknownPlotKind)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestExplore_PlotEmptyLoad(t *testing.T) {
	svc, _ := newExplore(t, true)
	sid := core.NewSessionID()
	svc.Load(context.Background(), sid, []string{"UNKNOWN"}, phewas.SubsetBoth)

	fig, err := svc.Plot(context.Background(), sid, PlotRequest{Kind: render.KindBar})
	require.NoError(t, err)
	assert.True(t, fig.Empty)
	assert.Equal(t, render.NoDataMessage, fig.Message)
}

func TestExplore_FrameFilters(t *testing.T) {
	svc, sid := newExplore(t, true)
	filters := pipeline.NewCategoryFilters(pipeline.MatchExact).
		Set(phewas.ContinuousVariable, pipeline.RestrictedTo("LDL cholesterol"))

	frame, err := svc.Frame(context.Background(), sid, PlotRequest{Filters: filters})
	require.NoError(t, err)
	for _, r := range frame.Rows {
		if r.AnalysisType == phewas.ContinuousVariable {
			assert.Equal(t, "LDL cholesterol", r.Description)
		}
	}
}

func TestExplore_Labels(t *testing.T) {
	svc, _ := newExplore(t, true)

	labels, err := svc.Labels(context.Background(), phewas.ContinuousVariable)
	require.NoError(t, err)
	assert.Equal(t, []string{"HDL cholesterol", "LDL cholesterol"}, labels)

	_, err = svc.Labels(context.Background(), "OTHER")
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestExplore_LabelsWithoutCatalog(t *testing.T) {
	svc, _ := newExplore(t, false)
	_, err := svc.Labels(context.Background(), phewas.Phecodes)
	assert.Error(t, err)
}

func TestExplore_Report(t *testing.T) {
	svc, sid := newExplore(t, true)

	md, err := svc.Report(context.Background(), sid)
	require.NoError(t, err)
	assert.Contains(t, string(md), "| PCSK9 | PCSK9 | ENSGPCSK9 | 5 | ok |")
	assert.Contains(t, string(md), "## Continuous variables")
	assert.Contains(t, string(md), "HDL cholesterol")

	_, err = svc.Report(context.Background(), core.NewSessionID())
	assert.ErrorIs(t, err, core.ErrResultSetNotFound)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}
