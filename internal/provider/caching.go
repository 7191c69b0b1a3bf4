package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/cache"
	"github.com/jky-sys/Screener-3.0/internal/metrics"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// CachingProvider wraps a Provider with a candle cache keyed by symbol and
// period. Cache errors are logged and treated as misses.
type CachingProvider struct {
	inner Provider
	store cache.Store
	ttl   time.Duration
	log   zerolog.Logger

	metrics *metrics.Metrics
}

// NewCachingProvider creates a caching wrapper around inner
func NewCachingProvider(inner Provider, store cache.Store, ttl time.Duration, log zerolog.Logger) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		store: store,
		ttl:   ttl,
		log:   log.With().Str("component", "cache").Logger(),
	}
}

// WithMetrics records cache hits and misses on m
func (p *CachingProvider) WithMetrics(m *metrics.Metrics) *CachingProvider {
	p.metrics = m
	return p
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }
func (p *CachingProvider) RateLimit() int    { return p.inner.RateLimit() }

func (p *CachingProvider) GetDailyCandles(ctx context.Context, symbol string, period model.Period) ([]model.Candle, error) {
	key := symbol + "|" + string(period)

	cached, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
		p.metrics.ObserveCache("error")
	}
	if ok {
		p.metrics.ObserveCache("hit")
		return cached, nil
	}
	if err == nil {
		p.metrics.ObserveCache("miss")
	}

	candles, err := p.inner.GetDailyCandles(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, key, candles, p.ttl); err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
	return candles, nil
}
