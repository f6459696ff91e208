// internal/app/system/timeouts/timeouts.go

// Package timeouts provides centralized timeout values for handler and
// store operations. Using one set of tiers keeps behavior consistent and
// makes adjustments a one-line change.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes
//   - Long: multi-collection operations (ledger append + fan-out)
//   - Batch: bulk marking, retention purges
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Configure overrides the default tiers. Zero values keep the default.
func Configure(p, s, m, l, b time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if p > 0 {
		ping = p
	}
	if s > 0 {
		short = s
	}
	if m > 0 {
		medium = m
	}
	if l > 0 {
		long = l
	}
	if b > 0 {
		batch = b
	}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for operations touching multiple collections.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the timeout for bulk operations.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// WithTimeout wraps ctx with the given timeout and logs the operation
// name at debug level so slow paths are attributable.
func WithTimeout(ctx context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	if log != nil {
		log.Debug("operation timeout set", zap.String("op", op), zap.Duration("timeout", d))
	}
	return context.WithTimeout(ctx, d)
}
