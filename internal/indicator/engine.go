// Package indicator derives the per-bar channel, momentum, divergence and
// accumulation series used to classify a daily price history.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

const (
	ChannelSpan        = 26
	MomentumFastSpan   = 12
	MomentumSlowSpan   = 26
	MomentumSignalSpan = 9

	DivergenceWindow    = 60
	DivergenceProximity = 1.05 // Low within 5% of the 60-bar low
	DivergenceMargin    = 0.1  // momentum above its 60-bar low by this much

	AccumulationMinBars    = 250
	AccumulationRMALength  = 3
	AccumulationSmoothSpan = 3
	OversoldWindow         = 30
)

var (
	// ErrUnordered is returned when bars are not strictly ascending by time.
	ErrUnordered = errors.New("bars are not strictly ascending by date")
	// ErrInvalidPrice is returned for NaN, infinite or negative prices.
	ErrInvalidPrice = errors.New("invalid price")
)

// Row is a price bar augmented with every derived indicator value
type Row struct {
	model.Candle

	ChannelUpper  float64 `json:"channel_upper"`
	ChannelLower  float64 `json:"channel_lower"`
	ChannelRising bool    `json:"channel_rising"`

	MomentumFast   float64 `json:"momentum_fast"`
	MomentumSlow   float64 `json:"momentum_slow"`
	MomentumLine   float64 `json:"momentum_line"`
	MomentumSignal float64 `json:"momentum_signal"`
	GoldenCross    bool    `json:"golden_cross"`

	DivergencePotential bool    `json:"divergence_potential"`
	AccumulationScore   float64 `json:"accumulation_score"`
}

// Validate checks the input contract: strictly ascending dates and finite,
// non-negative prices.
func Validate(candles []model.Candle) error {
	for i, c := range candles {
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("bar %d (%s): %w: %v", i, c.Time.Format("2006-01-02"), ErrInvalidPrice, v)
			}
		}
		if i > 0 && !c.Time.After(candles[i-1].Time) {
			return fmt.Errorf("bar %d (%s): %w", i, c.Time.Format("2006-01-02"), ErrUnordered)
		}
	}
	return nil
}

// Compute derives all indicator series for one symbol's history. The output
// has the same length and order as the input. Compute is pure: the same
// input always yields the same output.
func Compute(candles []model.Candle) ([]Row, error) {
	if err := Validate(candles); err != nil {
		return nil, err
	}

	n := len(candles)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range candles {
		high[i], low[i], closes[i] = c.High, c.Low, c.Close
	}

	upper := EMA(high, ChannelSpan)
	lower := EMA(low, ChannelSpan)

	fast := EMA(closes, MomentumFastSpan)
	slow := EMA(closes, MomentumSlowSpan)
	line := make([]float64, n)
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, MomentumSignalSpan)

	minLow := rollingMin(low, DivergenceWindow)
	minLine := rollingMin(line, DivergenceWindow)

	accumulation := accumulationScores(low)

	rows := make([]Row, n)
	for t := range rows {
		r := Row{
			Candle:         candles[t],
			ChannelUpper:   upper[t],
			ChannelLower:   lower[t],
			MomentumFast:   fast[t],
			MomentumSlow:   slow[t],
			MomentumLine:   line[t],
			MomentumSignal: signal[t],
		}
		if t > 0 {
			r.ChannelRising = upper[t] > upper[t-1] && lower[t] > lower[t-1]
			r.GoldenCross = line[t] > signal[t] && line[t-1] < signal[t-1]
		}
		// NaN windows compare false, so short histories never flag.
		r.DivergencePotential = low[t] <= minLow[t]*DivergenceProximity &&
			line[t] > minLine[t]+DivergenceMargin &&
			r.GoldenCross
		r.AccumulationScore = accumulation[t]
		rows[t] = r
	}
	return rows, nil
}

// accumulationScores computes the smoothed accumulation oscillator from the
// Low series. Histories shorter than AccumulationMinBars score zero.
func accumulationScores(low []float64) []float64 {
	n := len(low)
	scores := make([]float64, n)
	if n < AccumulationMinBars {
		return scores
	}

	absDelta := make([]float64, n)
	upDelta := make([]float64, n)
	absDelta[0], upDelta[0] = math.NaN(), math.NaN()
	for t := 1; t < n; t++ {
		d := low[t] - low[t-1]
		absDelta[t] = math.Abs(d)
		upDelta[t] = math.Max(d, 0)
	}
	volUp := RMA(absDelta, AccumulationRMALength)
	volDown := RMA(upDelta, AccumulationRMALength)
	minLow := rollingMin(low, OversoldWindow)

	raw := make([]float64, n)
	for t := range raw {
		if !(low[t] <= minLow[t]) {
			continue
		}
		if volDown[t] != 0 && !math.IsNaN(volDown[t]) && !math.IsNaN(volUp[t]) {
			raw[t] = 100 * volUp[t] / volDown[t]
		}
	}
	return EMA(raw, AccumulationSmoothSpan)
}
