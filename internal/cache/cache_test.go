package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

func sampleCandles() []model.Candle {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []model.Candle{
		{Time: day, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1000},
		{Time: day.AddDate(0, 0, 1), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 1200},
	}
}

func assertRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "AAPL|2y"); ok || err != nil {
		t.Fatalf("expected miss on empty store, got ok=%v err=%v", ok, err)
	}

	want := sampleCandles()
	if err := s.Set(ctx, "AAPL|2y", want, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, "AAPL|2y")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candles, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Time.Equal(want[i].Time) || got[i].Close != want[i].Close || got[i].Volume != want[i].Volume {
			t.Errorf("candle %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	assertRoundTrip(t, s)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Set(ctx, "k", sampleCandles(), time.Minute); err != nil {
		t.Fatal(err)
	}
	first, _, _ := s.Get(ctx, "k")
	first[0].Close = -1

	second, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if second[0].Close != 10.5 {
		t.Errorf("cached close mutated through returned slice: got %v", second[0].Close)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if err := s.Set(ctx, "k", sampleCandles(), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	assertRoundTrip(t, s)

	if !mr.Exists(redisKeyPrefix + "AAPL|2y") {
		t.Error("expected prefixed key in redis")
	}
	mr.FastForward(2 * time.Hour)
	if _, ok, _ := s.Get(context.Background(), "AAPL|2y"); ok {
		t.Error("expected expired key to miss")
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	assertRoundTrip(t, s)

	// Overwrite keeps a single row.
	if err := s.Set(context.Background(), "AAPL|2y", sampleCandles()[:1], time.Hour); err != nil {
		t.Fatal(err)
	}
	got, ok, _ := s.Get(context.Background(), "AAPL|2y")
	if !ok || len(got) != 1 {
		t.Errorf("expected overwritten entry with 1 candle, got %d", len(got))
	}

	now := time.Now()
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok, _ := s.Get(context.Background(), "AAPL|2y"); ok {
		t.Error("expected expired row to miss")
	}
	n, err := s.Purge(context.Background())
	if err != nil || n != 1 {
		t.Errorf("expected 1 purged row, got %d (%v)", n, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendNone})
	if err != nil || s != nil {
		t.Errorf("none backend: expected nil store, got %v (%v)", s, err)
	}

	s, err = Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", s)
	}

	if _, err := Open(ctx, Options{Backend: "etcd"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
