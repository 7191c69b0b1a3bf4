package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/cache"
	"github.com/jky-sys/Screener-3.0/internal/metrics"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

type fakeProvider struct {
	name      string
	available bool
	candles   []model.Candle
	err       error
	calls     int
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return f.available }
func (f *fakeProvider) RateLimit() int    { return 10 }
func (f *fakeProvider) GetDailyCandles(ctx context.Context, symbol string, period model.Period) ([]model.Candle, error) {
	f.calls++
	return f.candles, f.err
}

func oneCandle() []model.Candle {
	return []model.Candle{{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2}}
}

func TestFallbackProviderSkipsUnavailable(t *testing.T) {
	down := &fakeProvider{name: "down", available: false}
	up := &fakeProvider{name: "up", available: true, candles: oneCandle()}

	f := NewFallbackProvider(down, up, nil)
	if len(f.Providers()) != 1 {
		t.Fatalf("expected 1 available provider, got %d", len(f.Providers()))
	}
	candles, err := f.GetDailyCandles(context.Background(), "X", model.Period2Y)
	if err != nil || len(candles) != 1 {
		t.Fatalf("unexpected result: %v, %v", candles, err)
	}
}

func TestFallbackProviderRateLimit(t *testing.T) {
	if got := NewFallbackProvider().RateLimit(); got != 0 {
		t.Errorf("empty fallback rate limit = %d, want 0", got)
	}
	f := NewFallbackProvider(&fakeProvider{name: "a", available: true}, &fakeProvider{name: "b", available: true})
	if got := f.RateLimit(); got != 10 {
		t.Errorf("rate limit = %d, want 10", got)
	}
}

func TestFallbackProviderTriesNext(t *testing.T) {
	flaky := &fakeProvider{name: "flaky", available: true, err: &ProviderError{Provider: "flaky", Err: errors.New("timeout"), Retryable: true}}
	good := &fakeProvider{name: "good", available: true, candles: oneCandle()}

	f := NewFallbackProvider(flaky, good)
	if _, err := f.GetDailyCandles(context.Background(), "X", model.Period2Y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flaky.calls != 1 || good.calls != 1 {
		t.Errorf("expected both providers called once, got %d, %d", flaky.calls, good.calls)
	}
}

func TestFallbackProviderStopsOnNoData(t *testing.T) {
	empty := &fakeProvider{name: "empty", available: true, err: &ProviderError{Provider: "empty", Err: ErrNoData}}
	good := &fakeProvider{name: "good", available: true, candles: oneCandle()}

	f := NewFallbackProvider(empty, good)
	_, err := f.GetDailyCandles(context.Background(), "X", model.Period2Y)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if good.calls != 0 {
		t.Error("a symbol without history should not be retried elsewhere")
	}
}

func TestFallbackProviderEmpty(t *testing.T) {
	f := NewFallbackProvider()
	if f.IsAvailable() {
		t.Error("empty chain should not be available")
	}
	if _, err := f.GetDailyCandles(context.Background(), "X", model.Period2Y); err == nil {
		t.Error("expected error from empty chain")
	}
}

func TestCachingProvider(t *testing.T) {
	inner := &fakeProvider{name: "inner", available: true, candles: oneCandle()}
	m := metrics.New()
	p := NewCachingProvider(inner, cache.NewMemoryStore(), time.Hour, zerolog.Nop()).WithMetrics(m)

	for i := 0; i < 3; i++ {
		candles, err := p.GetDailyCandles(context.Background(), "X", model.Period2Y)
		if err != nil || len(candles) != 1 {
			t.Fatalf("call %d: unexpected result %v, %v", i, candles, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
	if hits := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); hits != 2 {
		t.Errorf("expected 2 cache hits, got %v", hits)
	}

	// A different period is a different key.
	if _, err := p.GetDailyCandles(context.Background(), "X", model.Period5Y); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", inner.calls)
	}
}

func TestCachingProviderDoesNotCacheErrors(t *testing.T) {
	inner := &fakeProvider{name: "inner", available: true, err: errors.New("down")}
	p := NewCachingProvider(inner, cache.NewMemoryStore(), time.Hour, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := p.GetDailyCandles(context.Background(), "X", model.Period2Y); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("expected errors to be retried upstream, got %d calls", inner.calls)
	}
}
