package testkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"phewasview/domain/phewas"
)

// FakeExPheWAS is an in-process stand-in for the ExPheWAS REST API.
//
// Known tokens:
//   - PCSK9: list-form symbol lookup, results wrapped in a "results" envelope
//   - APOB: object-form symbol lookup, bare results array
//   - ENSG000000001: Ensembl lookup returning symbol GENE1, no results
//   - BROKEN: resolves, but the results endpoint fails with HTTP 500
//   - C9ORF72: resolves to the mixed-case symbol C9orf72 with one continuous row
//   - UNKNOWN: symbol lookup returns an empty list
type FakeExPheWAS struct {
	Server *httptest.Server

	// CatalogDelay slows /outcome to widen races in concurrency tests
	CatalogDelay time.Duration
	// CatalogFailures makes the first n /outcome requests fail with 503
	CatalogFailures atomic.Int64

	CatalogHits atomic.Int64
	ResultHits  atomic.Int64

	mu      sync.Mutex
	subsets []string
}

// NewFakeExPheWAS starts the fake server; callers must Close it
func NewFakeExPheWAS() *FakeExPheWAS {
	f := &FakeExPheWAS{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.route))
	return f
}

// URL returns the base URL to configure the client with
func (f *FakeExPheWAS) URL() string { return f.Server.URL }

// Close shuts the server down
func (f *FakeExPheWAS) Close() { f.Server.Close() }

// Subsets returns the analysis_subset values received so far
func (f *FakeExPheWAS) Subsets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subsets...)
}

func (f *FakeExPheWAS) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/outcome":
		f.CatalogHits.Add(1)
		if f.CatalogDelay > 0 {
			time.Sleep(f.CatalogDelay)
		}
		if f.CatalogFailures.Load() > 0 {
			f.CatalogFailures.Add(-1)
			http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, catalogJSON)

	case strings.HasPrefix(path, "/gene/ensembl/"):
		id := strings.TrimPrefix(path, "/gene/ensembl/")
		if id == "ENSG000000001" {
			writeJSON(w, `{"ensembl_id": "ENSG000000001", "symbol": "GENE1"}`)
			return
		}
		http.NotFound(w, r)

	case strings.HasPrefix(path, "/gene/name/"):
		switch strings.TrimPrefix(path, "/gene/name/") {
		case "PCSK9":
			writeJSON(w, `[{"ensembl_id": "ENSGPCSK9", "symbol": "PCSK9"}]`)
		case "APOB":
			writeJSON(w, `{"ensembl_id": "ENSGAPOB", "symbol": "APOB"}`)
		case "BROKEN":
			writeJSON(w, `{"ensembl_id": "ENSGBROKEN", "symbol": "BROKEN"}`)
		case "C9ORF72":
			writeJSON(w, `[{"ensembl_id": "ENSGC9ORF72", "symbol": "C9orf72"}]`)
		case "UNKNOWN":
			writeJSON(w, `[]`)
		default:
			http.NotFound(w, r)
		}

	case strings.HasPrefix(path, "/gene/") && strings.HasSuffix(path, "/results"):
		f.ResultHits.Add(1)
		f.mu.Lock()
		f.subsets = append(f.subsets, r.URL.Query().Get("analysis_subset"))
		f.mu.Unlock()

		switch strings.TrimSuffix(strings.TrimPrefix(path, "/gene/"), "/results") {
		case "ENSGPCSK9":
			writeJSON(w, `{"results": `+pcsk9ResultsJSON+`}`)
		case "ENSGAPOB":
			writeJSON(w, apobResultsJSON)
		case "ENSG000000001":
			writeJSON(w, `[]`)
		case "ENSGC9ORF72":
			writeJSON(w, `[{"analysis_type": "CONTINUOUS_VARIABLE", "outcome_id": "O2", "p": 0.004, "q": 0.01, "n": 100}]`)
		case "ENSGBROKEN":
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}

	default:
		http.Error(w, `{"unknown": true}`, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

const pcsk9ResultsJSON = `[
	{"analysis_type": "CONTINUOUS_VARIABLE", "outcome_id": "O1", "p": 0.01, "q": 0.02, "n": 350000},
	{"analysis_type": "CONTINUOUS_VARIABLE", "outcome_id": "O2", "p": 0.20, "q": 0.40, "n": 349000},
	{"analysis_type": "CV_ENDPOINTS", "outcome_id": "O3", "p": 1e-10, "q": 5e-8, "n_cases": 12000, "n_controls": 300000},
	{"analysis_type": "SELF_REPORTED", "outcome_id": "O4", "p": 0.03, "n_cases": 800, "n_controls": 310000},
	{"analysis_type": "PHECODES", "outcome_id": "O5", "q": 0.001, "n_cases": 4000, "n_controls": 290000}
]`

const apobResultsJSON = `[
	{"analysis_type": "CONTINUOUS_VARIABLE", "outcome_id": "O1", "p": 0.05, "q": 0.06, "n": 351000},
	{"analysis_type": "CV_ENDPOINTS", "outcome_id": "O3", "p": 0.9, "q": 0.9, "n_cases": 11900, "n_controls": 301000}
]`

const catalogJSON = `[
	{"id": "O1", "description": "HDL cholesterol", "analysis_type": "CONTINUOUS_VARIABLE"},
	{"id": "O2", "description": "LDL cholesterol", "analysis_type": "CONTINUOUS_VARIABLE"},
	{"id": "O3", "description": "Myocardial infarction", "analysis_type": "CV_ENDPOINTS"},
	{"id": "O4", "description": null, "name": "Self-reported X", "analysis_type": "SELF_REPORTED"},
	{"id": "O5", "outcome_string": "Phecode Y", "analysis_type": "PHECODES"}
]`

// F returns a pointer to v, for optional float fields
func F(v float64) *float64 { return &v }

// I returns a pointer to v, for optional count fields
func I(v int64) *int64 { return &v }

// SampleRows mirrors the fake server's PCSK9 and APOB payloads with genes attached
func SampleRows() []phewas.AssociationRow {
	return []phewas.AssociationRow{
		{Gene: "PCSK9", AnalysisType: phewas.ContinuousVariable, OutcomeID: "O1", P: F(0.01), Q: F(0.02), N: I(350000)},
		{Gene: "PCSK9", AnalysisType: phewas.ContinuousVariable, OutcomeID: "O2", P: F(0.20), Q: F(0.40), N: I(349000)},
		{Gene: "PCSK9", AnalysisType: phewas.CVEndpoints, OutcomeID: "O3", P: F(1e-10), Q: F(5e-8), NCases: I(12000), NControls: I(300000)},
		{Gene: "PCSK9", AnalysisType: phewas.SelfReported, OutcomeID: "O4", P: F(0.03), NCases: I(800), NControls: I(310000)},
		{Gene: "PCSK9", AnalysisType: phewas.Phecodes, OutcomeID: "O5", Q: F(0.001), NCases: I(4000), NControls: I(290000)},
		{Gene: "APOB", AnalysisType: phewas.ContinuousVariable, OutcomeID: "O1", P: F(0.05), Q: F(0.06), N: I(351000)},
		{Gene: "APOB", AnalysisType: phewas.CVEndpoints, OutcomeID: "O3", P: F(0.9), Q: F(0.9), NCases: I(11900), NControls: I(301000)},
	}
}

// SampleCatalog mirrors the fake server's /outcome payload
func SampleCatalog() *phewas.Catalog {
	return &phewas.Catalog{
		Entries: map[string]phewas.OutcomeCatalogEntry{
			"O1": {OutcomeID: "O1", Description: "HDL cholesterol", AnalysisType: phewas.ContinuousVariable},
			"O2": {OutcomeID: "O2", Description: "LDL cholesterol", AnalysisType: phewas.ContinuousVariable},
			"O3": {OutcomeID: "O3", Description: "Myocardial infarction", AnalysisType: phewas.CVEndpoints},
			"O4": {OutcomeID: "O4", Name: "Self-reported X", AnalysisType: phewas.SelfReported},
			"O5": {OutcomeID: "O5", OutcomeString: "Phecode Y", AnalysisType: phewas.Phecodes},
		},
		Columns: []string{"description", "outcome_string", "name"},
	}
}
