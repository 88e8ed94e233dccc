// Package cache implements the idempotent result cache that fronts the
// price pipeline: versioned key derivation plus a best-effort policy that
// converts every storage failure into a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfdata/pricescan-cli/internal/model"
	"github.com/shelfdata/pricescan-cli/internal/store"
)

// keyVersion is bumped whenever extraction semantics change; old entries
// simply stop being addressable, no migration step needed.
const (
	keyNamespace = "scrape"
	keyVersion   = "v2"
)

// Key derives the cache key for one (market, identifier) computation.
func Key(market, ean string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyNamespace, keyVersion, market, ean)
}

// ResultCache wraps a Store with the pipeline's best-effort contract: a
// cache outage degrades to "always recompute", never to a failed request.
type ResultCache struct {
	store store.Store
}

// New creates a ResultCache over a store. A nil store disables caching.
func New(st store.Store) *ResultCache {
	return &ResultCache{store: st}
}

// Get returns the cached result for (market, ean) with Cached set, or
// (nil, false) on miss or any storage/decoding failure.
func (c *ResultCache) Get(ctx context.Context, market, ean string) (*model.Result, bool) {
	if c.store == nil {
		return nil, false
	}
	key := Key(market, ean)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache: read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var result model.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		zap.L().Warn("cache: corrupt entry, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}

	result.Cached = true
	return &result, true
}

// Set stores a result best-effort. Degraded results (error entries or
// results carrying a transient infrastructure discard) are not written:
// they would poison the cache with a false negative that outlives the
// transient condition.
func (c *ResultCache) Set(ctx context.Context, result *model.Result) {
	if c.store == nil || result == nil {
		return
	}
	if !Cacheable(result) {
		zap.L().Debug("cache: result not cacheable, skipping write",
			zap.String("ean", result.EAN),
		)
		return
	}
	key := Key(result.Market, result.EAN)

	stored := *result
	stored.Cached = false

	raw, err := json.Marshal(stored)
	if err != nil {
		zap.L().Warn("cache: marshal failed, skipping write",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		zap.L().Warn("cache: write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Cacheable reports whether a result may be persisted.
func Cacheable(result *model.Result) bool {
	if result.Error != "" || result.Cached {
		return false
	}
	for _, d := range result.Discards {
		if d.Transient {
			return false
		}
	}
	return true
}
