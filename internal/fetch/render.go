package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/internal/page"
	"github.com/shelfdata/pricescan-cli/pkg/render"
)

// circuitBreaker tracks consecutive failures to skip a flaky upstream.
type circuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	openUntil   time.Time
	threshold   int           // consecutive failures to trip
	window      time.Duration // failures must occur within this window
	cooldown    time.Duration // how long the circuit stays open
}

func newCircuitBreaker(threshold int, window, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
	}
}

func (cb *circuitBreaker) isOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return time.Now().Before(cb.openUntil)
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := time.Now()
	if now.Sub(cb.lastFailure) > cb.window {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now
	if cb.failures >= cb.threshold {
		cb.openUntil = now.Add(cb.cooldown)
		zap.L().Warn("fetch: render circuit breaker opened",
			zap.Int("failures", cb.failures),
			zap.Duration("cooldown", cb.cooldown),
		)
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
}

// RenderAdapter wraps a render client as a Fetcher with a circuit breaker.
type RenderAdapter struct {
	client  render.Client
	breaker *circuitBreaker
}

// NewRenderAdapter creates a RenderAdapter from a render client.
// Includes a circuit breaker: 3 consecutive failures within 30s opens the
// circuit for 60s, causing immediate fallback to the plain fetcher.
func NewRenderAdapter(client render.Client) *RenderAdapter {
	return &RenderAdapter{
		client:  client,
		breaker: newCircuitBreaker(3, 30*time.Second, 60*time.Second),
	}
}

func (r *RenderAdapter) Name() string { return "render" }

// Supports returns true unless the circuit breaker is open.
func (r *RenderAdapter) Supports(_ string) bool {
	return !r.breaker.isOpen()
}

// Fetch renders a URL and derives visible text from the rendered HTML.
func (r *RenderAdapter) Fetch(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	if r.breaker.isOpen() {
		return nil, eris.New("render: circuit breaker open")
	}

	resp, err := r.client.Render(ctx, targetURL)
	if err != nil {
		r.breaker.recordFailure()
		return nil, err
	}
	if len(resp.HTML) < 100 {
		r.breaker.recordFailure()
		return nil, eris.New("render: empty page")
	}

	r.breaker.recordSuccess()
	return &model.FetchedPage{
		RequestedURL: targetURL,
		FinalURL:     resp.FinalURL,
		HTML:         resp.HTML,
		VisibleText:  page.Text(resp.HTML),
	}, nil
}
