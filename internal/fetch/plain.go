package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/internal/page"
)

// PlainFetcher fetches HTML via net/http without JavaScript rendering.
// Sufficient for vendor pages that ship prices in the initial document.
type PlainFetcher struct {
	client *http.Client
}

// NewPlainFetcher creates a PlainFetcher with sensible defaults.
func NewPlainFetcher(timeout time.Duration) *PlainFetcher {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &PlainFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (p *PlainFetcher) Name() string           { return "plain_http" }
func (p *PlainFetcher) Supports(_ string) bool { return true }

// Fetch retrieves a URL and derives visible text from the raw HTML.
func (p *PlainFetcher) Fetch(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "plain_http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PriceScanBot/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "plain_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, eris.Wrap(err, "plain_http: read body")
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("plain_http: status %d", resp.StatusCode)
	}
	if len(body) < 100 {
		return nil, eris.New("plain_http: empty page")
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	html := string(body)
	return &model.FetchedPage{
		RequestedURL: targetURL,
		FinalURL:     finalURL,
		HTML:         html,
		VisibleText:  page.Text(html),
	}, nil
}
