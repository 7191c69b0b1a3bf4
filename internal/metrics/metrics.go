package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Symbol scan outcomes
const (
	OutcomeCandidate = "candidate"
	OutcomeRejected  = "rejected"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds the screener's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal     *prometheus.CounterVec   // labels: universe
	SymbolsTotal   *prometheus.CounterVec   // labels: outcome
	ScanDuration   *prometheus.HistogramVec // labels: universe
	LastCandidates *prometheus.GaugeVec     // labels: universe
	CacheLookups   *prometheus.CounterVec   // labels: result
	ActiveWatchers prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_scans_total",
			Help: "Completed universe scans",
		}, []string{"universe"}),
		SymbolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_symbols_total",
			Help: "Symbols processed by outcome",
		}, []string{"outcome"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_scan_duration_seconds",
			Help:    "Wall time of a universe scan",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"universe"}),
		LastCandidates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "screener_last_scan_candidates",
			Help: "Candidates found by the latest scan",
		}, []string{"universe"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_cache_lookups_total",
			Help: "Candle cache lookups by result",
		}, []string{"result"}),
		ActiveWatchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_progress_watchers",
			Help: "Open scan progress websocket connections",
		}),
	}

	m.registry.MustRegister(
		m.ScansTotal,
		m.SymbolsTotal,
		m.ScanDuration,
		m.LastCandidates,
		m.CacheLookups,
		m.ActiveWatchers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSymbol counts one processed symbol
func (m *Metrics) ObserveSymbol(outcome string) {
	if m == nil {
		return
	}
	m.SymbolsTotal.WithLabelValues(outcome).Inc()
}

// ObserveScan records a finished scan
func (m *Metrics) ObserveScan(universe string, took time.Duration, candidates int) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(universe).Inc()
	m.ScanDuration.WithLabelValues(universe).Observe(took.Seconds())
	m.LastCandidates.WithLabelValues(universe).Set(float64(candidates))
}

// ObserveCache counts a cache lookup. result is hit, miss or error.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// WatcherConnected tracks open progress streams; call the returned func on close
func (m *Metrics) WatcherConnected() func() {
	if m == nil {
		return func() {}
	}
	m.ActiveWatchers.Inc()
	return m.ActiveWatchers.Dec
}
