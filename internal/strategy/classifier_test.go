package strategy

import (
	"math"
	"strings"
	"testing"

	"github.com/jky-sys/Screener-3.0/internal/indicator"
)

// quietRows returns n rows with every condition off.
func quietRows(n int) []indicator.Row {
	return make([]indicator.Row, n)
}

// candidateRows returns 100 rows satisfying the rule with score 0:
// accumulation at bar 50, channel rising on the last two bars, golden cross 3 bars ago.
func candidateRows() []indicator.Row {
	rows := quietRows(100)
	rows[50].AccumulationScore = 1.0
	rows[98].ChannelRising = true
	rows[99].ChannelRising = true
	rows[97].GoldenCross = true
	return rows
}

func TestClassifyCandidate(t *testing.T) {
	c := Classify(candidateRows())
	if !c.Candidate {
		t.Fatalf("expected candidate, got %+v", c)
	}
	if c.Score != 0 {
		t.Errorf("expected score 0, got %d", c.Score)
	}
	if c.Label != LabelBase {
		t.Errorf("expected label %q, got %q", LabelBase, c.Label)
	}
}

func TestClassifyScoring(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func([]indicator.Row)
		wantScore int
		wantDiv   bool
	}{
		{"divergence in last 5", func(r []indicator.Row) { r[96].DivergencePotential = true }, 2, true},
		{"current accumulation", func(r []indicator.Row) { r[99].AccumulationScore = 0.8 }, 1, false},
		{"both", func(r []indicator.Row) {
			r[99].DivergencePotential = true
			r[99].AccumulationScore = 0.8
		}, 3, true},
		{"divergence 8 bars back counts for momentum only", func(r []indicator.Row) { r[92].DivergencePotential = true }, 0, false},
		{"accumulation at threshold is not enough", func(r []indicator.Row) { r[99].AccumulationScore = 0.5 }, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := candidateRows()
			tt.mutate(rows)
			c := Classify(rows)
			if !c.Candidate {
				t.Fatalf("expected candidate, got %+v", c)
			}
			if c.Score != tt.wantScore {
				t.Errorf("expected score %d, got %d", tt.wantScore, c.Score)
			}
			if got := strings.Contains(c.Label, LabelDivergence); got != tt.wantDiv {
				t.Errorf("label %q: divergence suffix = %v, want %v", c.Label, got, tt.wantDiv)
			}
			if !strings.HasPrefix(c.Label, LabelBase) {
				t.Errorf("label %q missing base label", c.Label)
			}
		})
	}
}

func TestClassifyRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]indicator.Row)
		check  func(Classification) bool
	}{
		{"accumulation older than 90 bars", func(r []indicator.Row) {
			r[50].AccumulationScore = 0
			r[9].AccumulationScore = 5
		}, func(c Classification) bool { return !c.RecentAccumulation }},
		{"accumulation is NaN", func(r []indicator.Row) { r[50].AccumulationScore = math.NaN() },
			func(c Classification) bool { return !c.RecentAccumulation }},
		{"current bar not rising", func(r []indicator.Row) { r[99].ChannelRising = false },
			func(c Classification) bool { return !c.TrendJustStarted }},
		{"rising sustained for 12 bars", func(r []indicator.Row) {
			for i := 88; i < 100; i++ {
				r[i].ChannelRising = true
			}
		}, func(c Classification) bool { return !c.TrendJustStarted }},
		{"golden cross 6 bars ago", func(r []indicator.Row) {
			r[97].GoldenCross = false
			r[94].GoldenCross = true
		}, func(c Classification) bool { return !c.HasMomentum }},
		{"divergence 11 bars ago", func(r []indicator.Row) {
			r[97].GoldenCross = false
			r[89].DivergencePotential = true
		}, func(c Classification) bool { return !c.HasMomentum }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := candidateRows()
			tt.mutate(rows)
			c := Classify(rows)
			if c.Candidate {
				t.Fatalf("expected rejection, got %+v", c)
			}
			if !tt.check(c) {
				t.Errorf("wrong failing condition: %+v", c)
			}
			if c.Score != 0 || c.Label != "" {
				t.Errorf("non-candidates carry no score or label, got %+v", c)
			}
		})
	}
}

func TestClassifyRisingElevenOfTwelveStillStarting(t *testing.T) {
	rows := candidateRows()
	for i := 89; i < 100; i++ {
		rows[i].ChannelRising = true
	}
	c := Classify(rows)
	if !c.TrendJustStarted || !c.Candidate {
		t.Errorf("expected a new trend when bar 88 was not rising, got %+v", c)
	}
}

func TestClassifyGuardsShortTables(t *testing.T) {
	full := candidateRows()
	for n := 0; n < MinClassifyRows; n++ {
		rows := full[len(full)-n:]
		for i := range rows {
			rows[i].AccumulationScore = 1
			rows[i].DivergencePotential = true
		}
		if c := Classify(rows); c.Candidate {
			t.Fatalf("%d rows classified as candidate", n)
		}
	}
}

func TestDivergenceForcesScoreOfTwo(t *testing.T) {
	for _, acc := range []float64{0, 0.3, 0.51, 10} {
		rows := candidateRows()
		rows[98].DivergencePotential = true
		rows[99].AccumulationScore = acc
		c := Classify(rows)
		if c.Score < 2 {
			t.Errorf("accumulation %.2f: expected score >= 2, got %d", acc, c.Score)
		}
	}
}

func TestSeverity(t *testing.T) {
	if got := Severity(0); got != "🔥" {
		t.Errorf("Severity(0) = %q", got)
	}
	if got := Severity(3); got != "🔥🔥🔥🔥" {
		t.Errorf("Severity(3) = %q", got)
	}
}
