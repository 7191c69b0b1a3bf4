// Package cache stores fetched daily candles so repeated scans of the same
// universe within the TTL do not hit the price provider again.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// Store is a TTL cache of candle histories keyed by an opaque string
type Store interface {
	// Get returns the cached candles and true on a fresh hit
	Get(ctx context.Context, key string) ([]model.Candle, bool, error)
	Set(ctx context.Context, key string, candles []model.Candle, ttl time.Duration) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Options selects and configures a backend
type Options struct {
	Backend    string
	RedisAddr  string
	SQLitePath string
}

// Open builds the configured store. BackendNone returns a nil store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendNone:
		return nil, nil
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr)
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.Backend)
	}
}
