// Package render provides a client for a headless-browser rendering
// service exposing a /content endpoint.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the rendering-service operations.
type Client interface {
	// Render loads a URL in the headless browser and returns the final URL
	// and rendered HTML after client-side scripts have run.
	Render(ctx context.Context, targetURL string) (*RenderResponse, error)
}

// RenderResponse is the parsed rendering-service response.
type RenderResponse struct {
	URL      string `json:"url"`
	FinalURL string `json:"finalUrl"`
	HTML     string `json:"html"`
}

// Option configures the render client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocale sets the browser locale sent with each render request.
func WithLocale(locale string) Option {
	return func(c *httpClient) {
		c.locale = locale
	}
}

// WithWaitMillis sets how long the service waits for price widgets to paint
// after DOM content is loaded.
func WithWaitMillis(ms int) Option {
	return func(c *httpClient) {
		c.waitMillis = ms
	}
}

type httpClient struct {
	baseURL    string
	locale     string
	waitMillis int
	http       *http.Client
}

// NewClient creates a render client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    baseURL,
		locale:     "de-DE",
		waitMillis: 1500,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type renderRequest struct {
	URL        string `json:"url"`
	WaitMillis int    `json:"waitMs"`
	Locale     string `json:"locale"`
}

func (c *httpClient) Render(ctx context.Context, targetURL string) (*RenderResponse, error) {
	body, err := json.Marshal(renderRequest{
		URL:        targetURL,
		WaitMillis: c.waitMillis,
		Locale:     c.locale,
	})
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/content", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "render: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "render: request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "render: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("render: status %d", resp.StatusCode)
	}

	var parsed RenderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, eris.Wrap(err, "render: decode response")
	}
	if parsed.FinalURL == "" {
		parsed.FinalURL = targetURL
	}
	return &parsed, nil
}
