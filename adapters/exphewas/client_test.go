package exphewas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/domain/phewas"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/testkit"
	"phewasview/ports"
)

var _ ports.PhewasAPI = (*Client)(nil)

func newTestClient(baseURL string) *Client {
	cfg := DefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.RateLimitPerSecond = 1000
	return NewClient(cfg)
}

func TestResolveGene_Symbol(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()
	client := newTestClient(fake.URL())

	ensg, sym, ok := client.ResolveGene(context.Background(), "PCSK9")
	require.True(t, ok)
	assert.Equal(t, "ENSGPCSK9", ensg)
	assert.Equal(t, "PCSK9", sym)

	// object-form response is accepted as well as a list
	ensg, sym, ok = client.ResolveGene(context.Background(), "APOB")
	require.True(t, ok)
	assert.Equal(t, "ENSGAPOB", ensg)
	assert.Equal(t, "APOB", sym)
}

func TestResolveGene_Ensembl(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()
	client := newTestClient(fake.URL())

	ensg, sym, ok := client.ResolveGene(context.Background(), "ENSG000000001")
	require.True(t, ok)
	assert.Equal(t, "ENSG000000001", ensg)
	assert.Equal(t, "GENE1", sym)
}

func TestResolveGene_Failures(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()
	client := newTestClient(fake.URL())

	for _, token := range []string{"UNKNOWN", "NOPE", "ENSG999", ""} {
		ensg, sym, ok := client.ResolveGene(context.Background(), token)
		assert.False(t, ok, token)
		assert.Empty(t, ensg, token)
		assert.Empty(t, sym, token)
	}

	// unreachable service
	dead := newTestClient("http://127.0.0.1:1")
	_, _, ok := dead.ResolveGene(context.Background(), "PCSK9")
	assert.False(t, ok)
}

func TestResolveGene_SymbolDefaultsToToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"ensembl_id": "ENSG00000169174"}]`))
	}))
	defer srv.Close()

	ensg, sym, ok := newTestClient(srv.URL).ResolveGene(context.Background(), "PCSK9")
	require.True(t, ok)
	assert.Equal(t, "ENSG00000169174", ensg)
	assert.Equal(t, "PCSK9", sym)
}

func TestFetchResults_Envelope(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()
	client := newTestClient(fake.URL())

	rows, err := client.FetchResults(context.Background(), "ENSGPCSK9", phewas.SubsetMaleOnly)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"MALE_ONLY"}, fake.Subsets())

	assert.Equal(t, phewas.ContinuousVariable, rows[0].AnalysisType)
	assert.Equal(t, "O1", rows[0].OutcomeID)
	require.NotNil(t, rows[0].P)
	assert.InDelta(t, 0.01, *rows[0].P, 1e-12)
	require.NotNil(t, rows[0].N)
	assert.EqualValues(t, 350000, *rows[0].N)
	assert.Nil(t, rows[0].NCases)

	// SELF_REPORTED row has no q; PHECODES row has no p
	assert.Nil(t, rows[3].Q)
	assert.Nil(t, rows[4].P)
	require.NotNil(t, rows[4].Q)
}

func TestFetchResults_BareArray(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()

	rows, err := newTestClient(fake.URL()).FetchResults(context.Background(), "ENSGAPOB", phewas.SubsetBoth)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFetchResults_HTTPErrorPropagates(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()

	_, err := newTestClient(fake.URL()).FetchResults(context.Background(), "ENSGBROKEN", phewas.SubsetBoth)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExternalService, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetchCatalog_RenamesID(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()

	cat, err := newTestClient(fake.URL()).FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, cat.Len())

	o4, ok := cat.Lookup("O4")
	require.True(t, ok)
	assert.Equal(t, "", o4.Description)
	assert.Equal(t, "Self-reported X", o4.BestLabel())
	assert.Equal(t, phewas.SelfReported, o4.AnalysisType)

	assert.Equal(t, []string{"description", "outcome_string", "name"}, cat.Columns)
}

func TestDecodeRow_JoinKeyFallbacks(t *testing.T) {
	items, err := unwrapRows([]byte(`[
		{"analysis_type": "PHECODES", "outcome": "X1", "p": "0.5"},
		{"analysis_type": "PHECODES", "id": "X2", "p": null, "q": "NaN"},
		{"analysis_type": "PHECODES", "outcome_id": "X3", "outcome": "ignored", "n_cases": 12.0}
	]`))
	require.NoError(t, err)
	rows := decodeRows(items)
	require.Len(t, rows, 3)

	assert.Equal(t, "X1", rows[0].OutcomeID)
	require.NotNil(t, rows[0].P)
	assert.InDelta(t, 0.5, *rows[0].P, 1e-12)

	assert.Equal(t, "X2", rows[1].OutcomeID)
	assert.Nil(t, rows[1].P)
	assert.Nil(t, rows[1].Q)

	assert.Equal(t, "X3", rows[2].OutcomeID)
	require.NotNil(t, rows[2].NCases)
	assert.EqualValues(t, 12, *rows[2].NCases)
}

func TestUnwrapRows_Shapes(t *testing.T) {
	items, err := unwrapRows([]byte(`{"analysis_type": "PHECODES", "outcome_id": "X"}`))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = unwrapRows([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = unwrapRows([]byte(`"text"`))
	assert.Error(t, err)

	_, err = unwrapRows([]byte(`{not json`))
	assert.Error(t, err)
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClientConfig()
	require.NoError(t, cfg.Validate())

	cfg.FetchTimeout = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FetchTimeout")
}
