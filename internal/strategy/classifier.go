package strategy

import (
	"strings"

	"github.com/jky-sys/Screener-3.0/internal/indicator"
)

const (
	// MinClassifyRows is the longest trailing window the rule reads.
	MinClassifyRows = 90

	accumulationWindow     = 90
	trendWindow            = 12
	divergenceWindow       = 10
	crossWindow            = 5
	strongDivergenceWindow = 5
	AccumulationThreshold  = 0.5

	LabelBase       = "early double-bottom formation"
	LabelDivergence = " + divergence pattern"
)

// Classification is the outcome of evaluating the accumulation/breakout rule
// on the last row of an indicator table.
type Classification struct {
	Candidate bool   `json:"candidate"`
	Score     int    `json:"score"`
	Label     string `json:"label,omitempty"`

	RecentAccumulation bool `json:"recent_accumulation"`
	TrendJustStarted   bool `json:"trend_just_started"`
	HasMomentum        bool `json:"has_momentum"`
}

// Classify evaluates the rule with the last row as the current bar. Tables
// shorter than MinClassifyRows are never candidates. NaN values compare
// false and therefore never satisfy a condition.
func Classify(rows []indicator.Row) Classification {
	var c Classification
	if len(rows) < MinClassifyRows {
		return c
	}
	curr := rows[len(rows)-1]

	c.RecentAccumulation = anyRow(tail(rows, accumulationWindow), func(r indicator.Row) bool {
		return r.AccumulationScore > AccumulationThreshold
	})

	sustained := allRows(tail(rows, trendWindow), func(r indicator.Row) bool { return r.ChannelRising })
	c.TrendJustStarted = curr.ChannelRising && !sustained

	c.HasMomentum = anyRow(tail(rows, divergenceWindow), isDivergence) ||
		anyRow(tail(rows, crossWindow), func(r indicator.Row) bool { return r.GoldenCross })

	if !(c.RecentAccumulation && c.TrendJustStarted && c.HasMomentum) {
		return c
	}

	c.Candidate = true
	if anyRow(tail(rows, strongDivergenceWindow), isDivergence) {
		c.Score += 2
	}
	if curr.AccumulationScore > AccumulationThreshold {
		c.Score++
	}
	c.Label = LabelBase
	if c.Score >= 2 {
		c.Label += LabelDivergence
	}
	return c
}

// Severity renders a score as flames, one more than the score.
func Severity(score int) string {
	if score < 0 {
		score = 0
	}
	return strings.Repeat("🔥", score+1)
}

func isDivergence(r indicator.Row) bool { return r.DivergencePotential }

func tail(rows []indicator.Row, n int) []indicator.Row {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func anyRow(rows []indicator.Row, pred func(indicator.Row) bool) bool {
	for _, r := range rows {
		if pred(r) {
			return true
		}
	}
	return false
}

func allRows(rows []indicator.Row, pred func(indicator.Row) bool) bool {
	for _, r := range rows {
		if !pred(r) {
			return false
		}
	}
	return true
}
