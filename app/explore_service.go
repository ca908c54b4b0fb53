package app

import (
	"context"
	"fmt"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal"
	"phewasview/internal/catalog"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/pipeline"
	"phewasview/internal/render"
	"phewasview/internal/report"
	"phewasview/internal/session"
)

// Defaults fill request fields the caller leaves unset
type Defaults struct {
	Limit     int
	Metric    phewas.Metric
	Threshold float64
}

// DefaultDefaults returns limit 10, metric p, threshold 0.05
func DefaultDefaults() Defaults {
	return Defaults{Limit: 10, Metric: phewas.MetricP, Threshold: pipeline.DefaultThreshold}
}

// TableRequest selects the top rows of one category
type TableRequest struct {
	Category  phewas.AnalysisType
	Limit     int
	Metric    phewas.Metric
	Threshold *float64
	Filter    pipeline.AllowList
}

// PlotRequest selects the projection and chart
type PlotRequest struct {
	Kind    render.Kind
	Metric  phewas.Metric
	Limit   int
	UseLog  bool
	Filters *pipeline.CategoryFilters
	Options render.Options
}

// ExploreService stores each session's latest load and derives tables,
// plots and exports from it
type ExploreService struct {
	loader   *LoadService
	store    *session.Store
	catalog  *catalog.Cache
	defaults Defaults
	log      *internal.Logger
}

// NewExploreService wires the load service, session store and catalog cache
func NewExploreService(loader *LoadService, store *session.Store, cat *catalog.Cache, defaults Defaults) *ExploreService {
	if defaults.Limit < 1 {
		defaults.Limit = 1
	}
	if !defaults.Metric.IsRecognized() {
		defaults.Metric = phewas.MetricP
	}
	return &ExploreService{
		loader:   loader,
		store:    store,
		catalog:  cat,
		defaults: defaults,
		log:      internal.DefaultLogger.WithComponent("Explore"),
	}
}

// Defaults returns the configured request defaults
func (s *ExploreService) Defaults() Defaults {
	return s.defaults
}

// Load runs a load and replaces the session's result set with it
func (s *ExploreService) Load(ctx context.Context, sessionID core.SessionID, tokens []string, subset phewas.Subset) (*phewas.ResultSet, *phewas.LoadReport) {
	rs, report := s.loader.LoadForSession(ctx, sessionID, tokens, subset)
	s.store.Put(sessionID, rs, report)
	return rs, report
}

// ResultSet returns the session's latest load
func (s *ExploreService) ResultSet(sessionID core.SessionID) (*phewas.ResultSet, *phewas.LoadReport, error) {
	e, err := s.store.Get(sessionID)
	if err != nil {
		nf := apperrors.NotFound(fmt.Sprintf("results for session %s", sessionID))
		nf.Cause = err
		return nil, nil, nf
	}
	return e.ResultSet, e.Report, nil
}

// Catalog returns the outcome catalog, or nil when it is unavailable
func (s *ExploreService) Catalog(ctx context.Context) *phewas.Catalog {
	cat, err := s.catalog.Get(ctx)
	if err != nil {
		s.log.Warn("continuing without outcome labels: %v", err)
		return nil
	}
	return cat
}

// Table returns the tidy top-N table of one category
func (s *ExploreService) Table(ctx context.Context, sessionID core.SessionID, req TableRequest) (pipeline.Table, error) {
	rs, _, err := s.ResultSet(sessionID)
	if err != nil {
		return pipeline.Table{}, err
	}
	if !req.Category.IsRecognized() {
		return pipeline.Table{}, unknownCategory(req.Category)
	}
	if req.Limit == 0 {
		req.Limit = s.defaults.Limit
	}
	if req.Metric == "" {
		req.Metric = s.defaults.Metric
	}

	ranked := pipeline.Rank(rs.Rows, req.Category, req.Limit)
	if len(ranked) == 0 {
		return pipeline.Tidy(nil, nil, pipeline.TidyOptions{}), nil
	}
	return pipeline.Tidy(ranked, s.Catalog(ctx), pipeline.TidyOptions{
		Metric:    req.Metric,
		Threshold: req.Threshold,
		Filter:    req.Filter,
	}), nil
}

// ExportTable returns every row of the session's load in display form
func (s *ExploreService) ExportTable(ctx context.Context, sessionID core.SessionID) (pipeline.Table, error) {
	rs, _, err := s.ResultSet(sessionID)
	if err != nil {
		return pipeline.Table{}, err
	}
	if rs.IsEmpty() {
		return pipeline.Tidy(nil, nil, pipeline.TidyOptions{}), nil
	}
	return pipeline.Tidy(rs.Rows, s.Catalog(ctx), pipeline.TidyOptions{Metric: s.defaults.Metric}), nil
}

// Frame projects, scales and jitters the session's rows
func (s *ExploreService) Frame(ctx context.Context, sessionID core.SessionID, req PlotRequest) (pipeline.PlotFrame, error) {
	rs, _, err := s.ResultSet(sessionID)
	if err != nil {
		return pipeline.PlotFrame{}, err
	}
	req = s.fillPlot(req)

	var cat *phewas.Catalog
	if !rs.IsEmpty() {
		cat = s.Catalog(ctx)
	}
	frame := pipeline.Project(rs.Rows, cat, pipeline.ProjectOptions{
		Metric:  req.Metric,
		Limit:   req.Limit,
		Filters: req.Filters,
	})
	return pipeline.Prepare(frame, req.UseLog), nil
}

// Plot builds the requested figure for the session
func (s *ExploreService) Plot(ctx context.Context, sessionID core.SessionID, req PlotRequest) (render.Figure, error) {
	if _, err := render.ParseKind(string(req.Kind)); err != nil {
		return render.Figure{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	frame, err := s.Frame(ctx, sessionID, req)
	if err != nil {
		return render.Figure{}, err
	}
	req = s.fillPlot(req)
	fig, err := render.Build(req.Kind, frame, req.Options)
	if err != nil {
		return render.Figure{}, err
	}
	s.log.Debug("%s plot for %s: %d rows", req.Kind, sessionID, len(frame.Rows))
	return fig, nil
}

// Report builds the markdown load report with the top rows of every category
func (s *ExploreService) Report(ctx context.Context, sessionID core.SessionID) ([]byte, error) {
	rs, rep, err := s.ResultSet(sessionID)
	if err != nil {
		return nil, err
	}
	sections := make([]report.Section, 0, len(phewas.AnalysisTypes))
	for _, category := range phewas.AnalysisTypes {
		table, err := s.Table(ctx, sessionID, TableRequest{Category: category})
		if err != nil {
			return nil, apperrors.Wrapf(err, "report section %s", category)
		}
		sections = append(sections, report.Section{Category: category, Table: table})
	}
	return report.Markdown(rs, rep, sections), nil
}

// Labels returns the filter choices of one category
func (s *ExploreService) Labels(ctx context.Context, category phewas.AnalysisType) ([]string, error) {
	if !category.IsRecognized() {
		return nil, unknownCategory(category)
	}
	cat, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.LabelList(cat, category), nil
}

func unknownCategory(category phewas.AnalysisType) error {
	return apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category))
}

func (s *ExploreService) fillPlot(req PlotRequest) PlotRequest {
	if req.Metric == "" {
		req.Metric = s.defaults.Metric
	}
	if req.Limit == 0 {
		req.Limit = s.defaults.Limit
	}
	if req.Options.Threshold <= 0 {
		req.Options.Threshold = s.defaults.Threshold
	}
	if req.Options.Limit == 0 {
		req.Options.Limit = pipeline.CoerceLimit(req.Limit)
	}
	return req
}
