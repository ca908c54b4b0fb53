package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/adapters/exphewas"
	"phewasview/domain/core"
	"phewasview/domain/phewas"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/testkit"
)

type recordingProgress struct {
	mu     sync.Mutex
	events []phewas.LoadEvent
}

func (r *recordingProgress) BroadcastLoad(ev phewas.LoadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingProgress) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

func newFakeClient(t *testing.T) (*testkit.FakeExPheWAS, *exphewas.Client) {
	t.Helper()
	fake := testkit.NewFakeExPheWAS()
	t.Cleanup(fake.Close)
	cfg := exphewas.DefaultClientConfig()
	cfg.BaseURL = fake.URL()
	cfg.RateLimitPerSecond = 1000
	cfg.Burst = 100
	return fake, exphewas.NewClient(cfg)
}

func TestLoad_NoTokens(t *testing.T) {
	_, client := newFakeClient(t)
	svc := NewLoadService(client, 2)

	rs, report := svc.Load(context.Background(), nil, phewas.SubsetBoth)
	assert.True(t, rs.IsEmpty())
	assert.Equal(t, []string{"Enter at least one gene (symbol or ENSG)."}, report.Log)
}

func TestLoad_MixedOutcomes(t *testing.T) {
	fake, client := newFakeClient(t)
	svc := NewLoadService(client, 3)

	rs, report := svc.Load(context.Background(), []string{"PCSK9", "UNKNOWN", "APOB", "BROKEN"}, phewas.SubsetFemaleOnly)

	assert.Equal(t, []string{"PCSK9", "APOB"}, rs.Genes)
	require.Len(t, rs.Rows, 7)
	for i, r := range rs.Rows {
		if i < 5 {
			assert.Equal(t, "PCSK9", r.Gene)
		} else {
			assert.Equal(t, "APOB", r.Gene)
		}
	}
	assert.Equal(t, phewas.SubsetFemaleOnly, rs.Subset)

	require.Len(t, report.Log, 5)
	assert.Equal(t, "PCSK9: 5 rows.", report.Log[0])
	assert.Equal(t, "! Could not resolve 'UNKNOWN' - skipping.", report.Log[1])
	assert.Equal(t, "APOB: 2 rows.", report.Log[2])
	assert.Contains(t, report.Log[3], "BROKEN: ERROR")
	assert.Equal(t, "Total rows combined: 7", report.Log[4])

	require.Len(t, report.Genes, 4)
	assert.True(t, report.Genes[1].Skipped)
	assert.Equal(t, apperrors.CodeResolutionFailed, report.Genes[1].Code)
	assert.Equal(t, "could not resolve 'UNKNOWN'", report.Genes[1].Error)
	assert.NotEmpty(t, report.Genes[3].Error)
	assert.Equal(t, apperrors.CodeExternalService, report.Genes[3].Code)
	assert.Empty(t, report.Genes[0].Code)
	assert.Equal(t, "ENSGPCSK9", report.Genes[0].EnsemblID)

	for _, s := range fake.Subsets() {
		assert.Equal(t, "FEMALE_ONLY", s)
	}
}

func TestLoad_EnsemblTokenWithNoRows(t *testing.T) {
	_, client := newFakeClient(t)
	svc := NewLoadService(client, 1)

	rs, report := svc.Load(context.Background(), []string{"ENSG000000001"}, phewas.SubsetBoth)
	assert.True(t, rs.IsEmpty())
	assert.Equal(t, []string{"GENE1"}, rs.Genes)
	assert.Equal(t, []string{"GENE1: 0 rows.", "No data loaded."}, report.Log)
}

func TestLoad_NothingResolves(t *testing.T) {
	_, client := newFakeClient(t)
	svc := NewLoadService(client, 0)

	rs, report := svc.Load(context.Background(), []string{"UNKNOWN", "NOPE"}, phewas.SubsetBoth)
	assert.True(t, rs.IsEmpty())
	assert.Empty(t, rs.Genes)
	assert.Equal(t, "No data loaded.", report.Log[len(report.Log)-1])
}

func TestLoad_ProgressEvents(t *testing.T) {
	_, client := newFakeClient(t)
	progress := &recordingProgress{}
	svc := NewLoadService(client, 2).WithProgress(progress)
	sid := core.NewSessionID()

	svc.LoadForSession(context.Background(), sid, []string{"PCSK9", "UNKNOWN", "BROKEN"}, phewas.SubsetBoth)

	types := progress.types()
	require.Len(t, types, 5)
	assert.Equal(t, phewas.EventLoadStarted, types[0])
	assert.Equal(t, phewas.EventLoadCompleted, types[4])
	assert.ElementsMatch(t,
		[]string{phewas.EventGeneFetched, phewas.EventGeneSkipped, phewas.EventGeneFailed},
		types[1:4])

	progress.mu.Lock()
	defer progress.mu.Unlock()
	for _, ev := range progress.events {
		assert.Equal(t, sid.String(), ev.SessionID)
		assert.False(t, ev.Timestamp.IsZero())
	}
	assert.InDelta(t, 1.0, progress.events[4].Progress, 1e-9)
	assert.Equal(t, 5, progress.events[4].Rows)
}

func TestLoad_NoEventsWithoutSession(t *testing.T) {
	_, client := newFakeClient(t)
	progress := &recordingProgress{}
	svc := NewLoadService(client, 2).WithProgress(progress)

	svc.Load(context.Background(), []string{"PCSK9"}, phewas.SubsetBoth)
	assert.Empty(t, progress.types())
}
