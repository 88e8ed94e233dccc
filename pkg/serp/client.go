// Package serp provides a client for the SerpAPI web search endpoint used
// to discover candidate vendor pages for an identifier.
package serp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the discovery operations.
type Client interface {
	// Discover searches for vendor pages listing the identifier on the given
	// domains and returns an ordered, deduplicated list of URLs.
	Discover(ctx context.Context, market, ean string, domains []string, maxResults int) ([]string, error)
}

// searchResponse is the subset of the SerpAPI response we consume.
type searchResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

// Option configures the serp client.
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

// WithRateLimit overrides the default request throttle.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = limiter
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a serp client. Searches are throttled to one request
// per second with a small burst to stay inside the plan quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com",
		http:    &http.Client{Timeout: 25 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Discover(ctx context.Context, market, ean string, domains []string, maxResults int) ([]string, error) {
	if len(domains) == 0 {
		return nil, eris.Errorf("serp: no domain list for market %s", market)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "serp: rate limit wait")
	}

	sites := make([]string, len(domains))
	for i, d := range domains {
		sites[i] = "site:" + d
	}
	query := ean + " (EAN OR GTIN) " + strings.Join(sites, " OR ")

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("gl", strings.ToLower(market))
	params.Set("num", strconv.Itoa(10))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serp: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serp: request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "serp: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serp: status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrap(err, "serp: decode response")
	}

	seen := make(map[string]bool)
	var urls []string
	for _, r := range parsed.OrganicResults {
		if r.Link == "" {
			continue
		}
		u, err := url.Parse(r.Link)
		if err != nil || u.Host == "" {
			continue
		}
		normalized := u.String()
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
		if maxResults > 0 && len(urls) >= maxResults {
			break
		}
	}
	return urls, nil
}
