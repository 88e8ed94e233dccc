// Package store persists cached aggregate results in a key-value table.
package store

import (
	"context"
	"time"
)

// Store is the persistence contract for the result cache: a single
// key-value table with upsert-on-conflict semantics. Get returns (nil, nil)
// on a missing key so callers can distinguish a miss from a failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Prune(ctx context.Context, olderThan time.Duration) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
