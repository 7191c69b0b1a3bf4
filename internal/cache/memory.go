package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

type memoryEntry struct {
	candles   []model.Candle
	expiresAt time.Time
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]model.Candle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	cp := make([]model.Candle, len(e.candles))
	copy(cp, e.candles)
	return cp, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, candles []model.Candle, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]model.Candle, len(candles))
	copy(cp, candles)
	s.entries[key] = memoryEntry{candles: cp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
