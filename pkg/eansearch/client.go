// Package eansearch provides a client for the ean-search.org barcode
// lookup API, used to enrich master records. Enrichment is purely additive;
// every failure degrades to a nil payload.
package eansearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the barcode lookup operations.
type Client interface {
	// Lookup returns provider metadata for an identifier, or nil when the
	// identifier is unknown.
	Lookup(ctx context.Context, ean string) (*Product, error)
}

// Product is the subset of the lookup payload the pipeline consumes.
type Product struct {
	Name         string `json:"name"`
	CategoryName string `json:"categoryName"`
	IssuingCountry string `json:"issuingCountry"`
}

// Option configures the eansearch client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an eansearch client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.ean-search.org",
		http:    &http.Client{Timeout: 25 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, ean string) (*Product, error) {
	params := url.Values{}
	params.Set("op", "barcode-lookup")
	params.Set("barcode", ean)
	params.Set("format", "json")
	params.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "eansearch: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "eansearch: request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "eansearch: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("eansearch: status %d", resp.StatusCode)
	}

	// The API answers with a one-element product array.
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, eris.Wrap(err, "eansearch: decode response")
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}
