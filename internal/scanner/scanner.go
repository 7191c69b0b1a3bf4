package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/metrics"
	"github.com/jky-sys/Screener-3.0/internal/strategy"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// ProgressCallback is called after each symbol with progress updates
type ProgressCallback func(scanned, total int, symbol string)

// Report is the outcome of one universe scan
type Report struct {
	ID           string            `json:"id"`
	Universe     string            `json:"universe"`
	StartedAt    time.Time         `json:"started_at"`
	TotalScanned int               `json:"total_scanned"`
	Skipped      int               `json:"skipped"`
	Failed       int               `json:"failed"`
	Candidates   []strategy.Signal `json:"candidates"`
	ScanTime     time.Duration     `json:"scan_time"`
}

// Scanner runs a strategy over a universe with a bounded worker pool
type Scanner struct {
	strategy     strategy.Strategy
	workers      int
	timeout      time.Duration
	log          zerolog.Logger
	metrics      *metrics.Metrics
	progressFunc ProgressCallback
}

// NewScanner creates a new scanner
func NewScanner(s strategy.Strategy, workers int, timeout time.Duration, log zerolog.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		strategy: s,
		workers:  workers,
		timeout:  timeout,
		log:      log.With().Str("component", "scanner").Logger(),
	}
}

// WithMetrics records per-symbol outcomes and scan timings on m
func (s *Scanner) WithMetrics(m *metrics.Metrics) *Scanner {
	s.metrics = m
	return s
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

type outcome struct {
	signal *strategy.Signal
	kind   string
}

// Scan runs the strategy over stocks. Symbols without usable history are
// skipped and fetch or data errors are counted as failures; neither stops
// the scan. Candidates are ordered by score, strongest first.
//
// When ctx is cancelled or the scan times out, the partial report is
// returned together with the context error.
func (s *Scanner) Scan(ctx context.Context, universe string, stocks []model.Stock) (*Report, error) {
	startTime := time.Now()
	report := &Report{
		ID:         uuid.NewString(),
		Universe:   universe,
		StartedAt:  startTime,
		Candidates: []strategy.Signal{},
	}

	if len(stocks) == 0 {
		report.ScanTime = time.Since(startTime)
		return report, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	jobChan := make(chan model.Stock, len(stocks))
	resultChan := make(chan outcome, len(stocks))

	for _, stock := range stocks {
		jobChan <- stock
	}
	close(jobChan)

	var scannedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stock := range jobChan {
				if ctx.Err() != nil {
					return
				}
				resultChan <- s.analyze(ctx, stock)

				count := atomic.AddInt64(&scannedCount, 1)
				if s.progressFunc != nil {
					s.progressFunc(int(count), len(stocks), stock.Symbol)
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for res := range resultChan {
		report.TotalScanned++
		switch res.kind {
		case metrics.OutcomeCandidate:
			report.Candidates = append(report.Candidates, *res.signal)
		case metrics.OutcomeSkipped:
			report.Skipped++
		case metrics.OutcomeFailed:
			report.Failed++
		}
	}

	SortSignals(report.Candidates)
	report.ScanTime = time.Since(startTime)
	s.metrics.ObserveScan(universe, report.ScanTime, len(report.Candidates))

	s.log.Info().
		Str("scan_id", report.ID).
		Str("universe", universe).
		Int("scanned", report.TotalScanned).
		Int("candidates", len(report.Candidates)).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("took", report.ScanTime).
		Msg("scan complete")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scanner) analyze(ctx context.Context, stock model.Stock) outcome {
	sig, err := s.strategy.Analyze(ctx, stock)
	var res outcome
	switch {
	case errors.Is(err, strategy.ErrInsufficientHistory):
		s.log.Debug().Str("symbol", stock.Symbol).Err(err).Msg("skipped")
		res.kind = metrics.OutcomeSkipped
	case err != nil:
		s.log.Warn().Str("symbol", stock.Symbol).Err(err).Msg("analysis failed")
		res.kind = metrics.OutcomeFailed
	case sig == nil:
		res.kind = metrics.OutcomeRejected
	default:
		// Reports stay small; charts recompute the indicator table.
		sig.Rows = nil
		res = outcome{signal: sig, kind: metrics.OutcomeCandidate}
	}
	s.metrics.ObserveSymbol(res.kind)
	return res
}

// SortSignals orders by score descending, then symbol
func SortSignals(signals []strategy.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Stock.Symbol < signals[j].Stock.Symbol
	})
}
