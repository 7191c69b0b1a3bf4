package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jky-sys/Screener-3.0/internal/indicator"
	"github.com/jky-sys/Screener-3.0/internal/provider"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// TrinityConfig holds configuration for the accumulation/breakout strategy
type TrinityConfig struct {
	Period  model.Period // history window to fetch
	MinBars int          // symbols with fewer bars are skipped
}

// DefaultTrinityConfig returns default configuration
func DefaultTrinityConfig() TrinityConfig {
	return TrinityConfig{
		Period:  model.Period2Y,
		MinBars: 200,
	}
}

// TrinityStrategy flags early accumulation / breakout candidates:
// 1. Accumulation oscillator fired within the last 90 bars
// 2. The channel has just turned up (not rising through all of the last 12 bars)
// 3. Momentum: divergence within 10 bars or a golden cross within 5
type TrinityStrategy struct {
	config   TrinityConfig
	provider provider.Provider
}

// NewTrinityStrategy creates a new trinity strategy
func NewTrinityStrategy(cfg TrinityConfig, p provider.Provider) *TrinityStrategy {
	if !cfg.Period.Valid() {
		cfg.Period = model.Period2Y
	}
	return &TrinityStrategy{config: cfg, provider: p}
}

// Name returns the strategy name
func (s *TrinityStrategy) Name() string {
	return "trinity"
}

// Description returns the strategy description
func (s *TrinityStrategy) Description() string {
	return "Early accumulation near a multi-month low with a freshly rising channel and momentum confirmation"
}

// Analyze fetches the stock's daily history and evaluates it
func (s *TrinityStrategy) Analyze(ctx context.Context, stock model.Stock) (*Signal, error) {
	candles, err := s.provider.GetDailyCandles(ctx, stock.Symbol, s.config.Period)
	if errors.Is(err, provider.ErrNoData) {
		return nil, fmt.Errorf("%s: %w: %w", stock.Symbol, ErrInsufficientHistory, err)
	}
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 || len(candles) < s.config.MinBars {
		return nil, fmt.Errorf("%s: %d bars: %w", stock.Symbol, len(candles), ErrInsufficientHistory)
	}
	return Evaluate(stock, candles)
}

// Evaluate runs the indicator engine and classifier over candles. It returns
// nil when the stock is not a candidate.
func Evaluate(stock model.Stock, candles []model.Candle) (*Signal, error) {
	rows, err := indicator.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("%s: computing indicators: %w", stock.Symbol, err)
	}

	c := Classify(rows)
	if !c.Candidate {
		return nil, nil
	}

	curr := rows[len(rows)-1]
	return &Signal{
		Stock:       stock,
		Strategy:    "trinity",
		LatestClose: curr.Close,
		Score:       c.Score,
		Severity:    Severity(c.Score),
		Label:       c.Label,
		AsOf:        curr.Time.Format("2006-01-02"),
		Rows:        rows,
	}, nil
}
