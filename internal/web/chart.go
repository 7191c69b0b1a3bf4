package web

import (
	"github.com/jky-sys/Screener-3.0/internal/indicator"
	"github.com/jky-sys/Screener-3.0/internal/strategy"
)

const (
	chartBars              = 150
	accumulationMarkerBase = 0.98
	divergenceMarkerBase   = 0.96
)

// ChartBar is one candle with its channel bounds
type ChartBar struct {
	Time         string  `json:"time"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       int64   `json:"volume"`
	ChannelUpper float64 `json:"channel_upper"`
	ChannelLower float64 `json:"channel_lower"`
}

// Marker pins an event below a bar
type Marker struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// ChartPayload is everything the dashboard needs to draw one symbol
type ChartPayload struct {
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Bars         []ChartBar `json:"bars"`
	Accumulation []Marker   `json:"accumulation"`
	Divergence   []Marker   `json:"divergence"`
	Candidate    bool       `json:"candidate"`
	Score        int        `json:"score"`
	Severity     string     `json:"severity,omitempty"`
	Label        string     `json:"label,omitempty"`
}

// BuildChart renders the last 150 rows of the indicator table. The
// classification covers the full table.
func BuildChart(symbol, name string, rows []indicator.Row) ChartPayload {
	payload := ChartPayload{
		Symbol:       symbol,
		Name:         name,
		Bars:         []ChartBar{},
		Accumulation: []Marker{},
		Divergence:   []Marker{},
	}

	c := strategy.Classify(rows)
	payload.Candidate = c.Candidate
	if c.Candidate {
		payload.Score = c.Score
		payload.Severity = strategy.Severity(c.Score)
		payload.Label = c.Label
	}

	if len(rows) > chartBars {
		rows = rows[len(rows)-chartBars:]
	}
	for _, r := range rows {
		day := r.Time.Format("2006-01-02")
		payload.Bars = append(payload.Bars, ChartBar{
			Time:         day,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			ChannelUpper: r.ChannelUpper,
			ChannelLower: r.ChannelLower,
		})
		if r.AccumulationScore > strategy.AccumulationThreshold {
			payload.Accumulation = append(payload.Accumulation, Marker{Time: day, Price: r.Low * accumulationMarkerBase})
		}
		if r.DivergencePotential {
			payload.Divergence = append(payload.Divergence, Marker{Time: day, Price: r.Low * divergenceMarkerBase})
		}
	}
	return payload
}
