package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal"
	apperrors "phewasview/internal/errors"
	"phewasview/ports"
)

// DefaultMaxConcurrentGenes bounds parallel resolve+fetch work per load
const DefaultMaxConcurrentGenes = 4

// Upstream is what a load needs from the association service
type Upstream interface {
	ports.GeneResolver
	ports.ResultFetcher
}

// LoadService resolves gene tokens and fetches their association rows
type LoadService struct {
	upstream      Upstream
	maxConcurrent int
	progress      ports.ProgressBroadcaster
	log           *internal.Logger
}

// NewLoadService creates a load service. maxConcurrent < 1 uses the default.
func NewLoadService(upstream Upstream, maxConcurrent int) *LoadService {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrentGenes
	}
	return &LoadService{
		upstream:      upstream,
		maxConcurrent: maxConcurrent,
		log:           internal.DefaultLogger.WithComponent("Load"),
	}
}

// WithProgress attaches a broadcaster for per-gene events
func (s *LoadService) WithProgress(p ports.ProgressBroadcaster) *LoadService {
	s.progress = p
	return s
}

// geneSlot is written by exactly one goroutine
type geneSlot struct {
	status phewas.GeneStatus
	rows   []phewas.AssociationRow
	line   string
}

// Load fetches every token for subset. Failing genes are logged and skipped;
// the remaining genes still load. Rows are concatenated in input order and
// carry the resolved symbol as their gene.
func (s *LoadService) Load(ctx context.Context, tokens []string, subset phewas.Subset) (*phewas.ResultSet, *phewas.LoadReport) {
	return s.LoadForSession(ctx, "", tokens, subset)
}

// LoadForSession is Load with progress events tagged for sessionID
func (s *LoadService) LoadForSession(ctx context.Context, sessionID core.SessionID, tokens []string, subset phewas.Subset) (*phewas.ResultSet, *phewas.LoadReport) {
	start := time.Now()
	rs := phewas.NewResultSet(subset)
	report := &phewas.LoadReport{Genes: []phewas.GeneStatus{}, Log: []string{}}

	if len(tokens) == 0 {
		report.AddLine("Enter at least one gene (symbol or ENSG).")
		return rs, report
	}

	s.emit(sessionID, phewas.LoadEvent{EventType: phewas.EventLoadStarted, Message: fmt.Sprintf("loading %d genes", len(tokens))})

	slots := make([]geneSlot, len(tokens))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, token := range tokens {
		g.Go(func() error {
			slots[i] = s.loadGene(gctx, token, subset)
			progress := float64(done.Add(1)) / float64(len(tokens))
			s.emitSlot(sessionID, slots[i], progress)
			return nil
		})
	}
	_ = g.Wait()

	for _, slot := range slots {
		report.Genes = append(report.Genes, slot.status)
		report.AddLine(slot.line)
		if slot.status.Skipped || slot.status.Error != "" {
			continue
		}
		rs.Genes = append(rs.Genes, slot.status.Symbol)
		rs.Rows = append(rs.Rows, slot.rows...)
	}

	if rs.IsEmpty() {
		report.AddLine("No data loaded.")
	} else {
		report.AddLine(fmt.Sprintf("Total rows combined: %d", len(rs.Rows)))
	}
	s.log.Info("loaded %d rows for %d/%d genes (%s) in %s", len(rs.Rows), len(rs.Genes), len(tokens), subset, time.Since(start))
	s.emit(sessionID, phewas.LoadEvent{EventType: phewas.EventLoadCompleted, Rows: len(rs.Rows), Progress: 1})
	return rs, report
}

func (s *LoadService) loadGene(ctx context.Context, token string, subset phewas.Subset) geneSlot {
	slot := geneSlot{status: phewas.GeneStatus{Token: token}}

	ensg, symbol, ok := s.upstream.ResolveGene(ctx, token)
	if !ok {
		rerr := apperrors.ResolutionFailed(token)
		slot.status.Skipped = true
		slot.status.Error = rerr.Error()
		slot.status.Code = rerr.Code
		slot.line = fmt.Sprintf("! Could not resolve '%s' - skipping.", token)
		s.log.Warn("could not resolve %q", token)
		return slot
	}
	slot.status.EnsemblID = ensg
	slot.status.Symbol = symbol

	rows, err := s.upstream.FetchResults(ctx, ensg, subset)
	if err != nil {
		slot.status.Error = err.Error()
		slot.status.Code = apperrors.GetCode(err)
		slot.line = fmt.Sprintf("%s: ERROR %v", symbol, err)
		s.log.Warn("fetch failed for %s (%s): %v", symbol, ensg, err)
		return slot
	}

	for i := range rows {
		rows[i].Gene = symbol
	}
	slot.rows = rows
	slot.status.Rows = len(rows)
	slot.line = fmt.Sprintf("%s: %d rows.", symbol, len(rows))
	return slot
}

func (s *LoadService) emitSlot(sessionID core.SessionID, slot geneSlot, progress float64) {
	ev := phewas.LoadEvent{
		Token:    slot.status.Token,
		Symbol:   slot.status.Symbol,
		Rows:     slot.status.Rows,
		Progress: progress,
		Message:  slot.line,
	}
	switch {
	case slot.status.Skipped:
		ev.EventType = phewas.EventGeneSkipped
	case slot.status.Error != "":
		ev.EventType = phewas.EventGeneFailed
	default:
		ev.EventType = phewas.EventGeneFetched
	}
	s.emit(sessionID, ev)
}

func (s *LoadService) emit(sessionID core.SessionID, ev phewas.LoadEvent) {
	if s.progress == nil || sessionID == "" {
		return
	}
	ev.SessionID = sessionID.String()
	ev.Timestamp = time.Now()
	s.progress.BroadcastLoad(ev)
}
