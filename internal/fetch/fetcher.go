// Package fetch obtains rendered page content for candidate URLs. The
// primary path goes through a headless-render service; a plain HTTP fetch
// is the degraded alternative when rendering is unnecessary or unavailable.
package fetch

import (
	"context"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

// Fetcher fetches a single URL and returns its rendered content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
	Name() string
	Supports(url string) bool
}
