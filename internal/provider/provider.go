package provider

import (
	"context"
	"errors"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// ErrNoData is returned when a symbol has no tradable history
var ErrNoData = errors.New("no data available")

// Provider defines the interface for daily price-history providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetDailyCandles returns daily bars covering period, ascending by date
	GetDailyCandles(ctx context.Context, symbol string, period model.Period) ([]model.Candle, error)

	// IsAvailable reports whether the provider can serve requests
	IsAvailable() bool

	// RateLimit returns the rate limit per minute
	RateLimit() int
}

// ProfileSource looks up company fundamentals
type ProfileSource interface {
	GetProfile(ctx context.Context, symbol string) (*model.Profile, error)
}

// NewsSource looks up recent headlines
type NewsSource interface {
	GetNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FallbackProvider tries multiple providers in order
type FallbackProvider struct {
	providers []Provider
}

// NewFallbackProvider creates a fallback chain of the available providers
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	available := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil && p.IsAvailable() {
			available = append(available, p)
		}
	}
	return &FallbackProvider{providers: available}
}

// Name returns the combined provider name
func (f *FallbackProvider) Name() string {
	return "fallback"
}

// GetDailyCandles tries each provider in order until one succeeds. A
// provider reporting ErrNoData ends the chain: the symbol has no history.
func (f *FallbackProvider) GetDailyCandles(ctx context.Context, symbol string, period model.Period) ([]model.Candle, error) {
	lastErr := errors.New("no providers configured")
	for _, p := range f.providers {
		data, err := p.GetDailyCandles(ctx, symbol, period)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if errors.Is(err, ErrNoData) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// IsAvailable returns true if any provider is available
func (f *FallbackProvider) IsAvailable() bool {
	return len(f.providers) > 0
}

// RateLimit returns the highest rate limit among providers
func (f *FallbackProvider) RateLimit() int {
	maxRate := 0
	for _, p := range f.providers {
		if p.RateLimit() > maxRate {
			maxRate = p.RateLimit()
		}
	}
	return maxRate
}

// Providers returns the list of underlying providers
func (f *FallbackProvider) Providers() []Provider {
	return f.providers
}
