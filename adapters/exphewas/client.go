package exphewas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"phewasview/domain/phewas"
	"phewasview/internal"
	apperrors "phewasview/internal/errors"
)

const maxErrorBody = 512

// Client talks to the ExPheWAS REST API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *internal.Logger
}

// NewClient creates a client; a nil config uses DefaultClientConfig
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimitPerSecond), config.Burst),
		log:        internal.DefaultLogger.WithComponent("ExPheWAS"),
	}
}

// WithHTTPClient swaps the transport, mainly for tests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ResolveGene maps a symbol or ENSG identifier to (ensemblID, symbol).
// Any failure yields ok=false; it never returns an error.
func (c *Client) ResolveGene(ctx context.Context, token string) (string, string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", false
	}

	if phewas.IsEnsemblID(token) {
		body, err := c.get(ctx, "/gene/ensembl/"+url.PathEscape(token), nil, c.config.ResolveTimeout)
		if err != nil {
			c.log.Debug("ensembl lookup for %s failed: %v", token, err)
			return "", "", false
		}
		info := gjson.ParseBytes(body)
		if !info.IsObject() {
			return "", "", false
		}
		return orDefault(optionalString(info.Get("ensembl_id")), token),
			orDefault(optionalString(info.Get("symbol")), token), true
	}

	body, err := c.get(ctx, "/gene/name/"+url.PathEscape(token), nil, c.config.ResolveTimeout)
	if err != nil {
		c.log.Debug("symbol lookup for %s failed: %v", token, err)
		return "", "", false
	}
	info := gjson.ParseBytes(body)
	if info.IsArray() {
		matches := info.Array()
		if len(matches) == 0 {
			return "", "", false
		}
		info = matches[0]
	}
	if !info.IsObject() {
		return "", "", false
	}

	ensemblID := optionalString(info.Get("ensembl_id"))
	if ensemblID == "" {
		return "", "", false
	}
	return ensemblID, orDefault(optionalString(info.Get("symbol")), token), true
}

// FetchResults retrieves the association rows of one gene for a sex subset
func (c *Client) FetchResults(ctx context.Context, ensemblID string, subset phewas.Subset) ([]phewas.AssociationRow, error) {
	query := url.Values{"analysis_subset": {string(subset)}}
	body, err := c.get(ctx, "/gene/"+url.PathEscape(ensemblID)+"/results", query, c.config.FetchTimeout)
	if err != nil {
		return nil, apperrors.ExternalServiceError("exphewas results", err)
	}

	items, err := unwrapRows(body)
	if err != nil {
		return nil, apperrors.ExternalServiceError("exphewas results", err)
	}
	rows := decodeRows(items)
	c.log.Debug("fetched %d rows for %s (%s)", len(rows), ensemblID, subset)
	return rows, nil
}

// FetchCatalog downloads the outcome catalog
func (c *Client) FetchCatalog(ctx context.Context) (*phewas.Catalog, error) {
	body, err := c.get(ctx, "/outcome", nil, c.config.FetchTimeout)
	if err != nil {
		return nil, apperrors.ExternalServiceError("exphewas outcome", err)
	}

	items, err := unwrapRows(body)
	if err != nil {
		return nil, apperrors.ExternalServiceError("exphewas outcome", err)
	}
	cat := decodeCatalog(items)
	c.log.Info("outcome catalog loaded: %d entries, columns %v", cat.Len(), cat.Columns)
	return cat, nil
}

// get issues one rate-limited GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, path string, query url.Values, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Trace("GET %s -> %d in %s", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, snippet)
	}
	return body, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
