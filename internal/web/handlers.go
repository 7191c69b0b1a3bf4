package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jky-sys/Screener-3.0/internal/indicator"
	"github.com/jky-sys/Screener-3.0/internal/provider"
	"github.com/jky-sys/Screener-3.0/internal/scanner"
	"github.com/jky-sys/Screener-3.0/internal/strategy"
	"github.com/jky-sys/Screener-3.0/internal/symbols"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// ScanRequest starts a scan of a universe or of explicit symbols
type ScanRequest struct {
	Universe string       `json:"universe"`
	Period   model.Period `json:"period,omitempty"`
	Symbols  []string     `json:"symbols,omitempty"`
}

// UniverseInfo contains universe details
type UniverseInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"` // static list size; index universes may differ when scraped
}

func (s *Server) handleUniverses(c *gin.Context) {
	infos := make([]UniverseInfo, 0, len(symbols.Universes))
	for _, u := range symbols.Universes {
		infos = append(infos, UniverseInfo{
			ID:    string(u),
			Name:  u.Description(),
			Count: len(symbols.GetUniverse(u)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"universes": infos})
}

func (s *Server) handleStartScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	job, err := s.StartScan(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": job.snapshot().ID})
}

func (s *Server) handleListScans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scans": s.jobs.list()})
}

func (s *Server) handleGetScan(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found or expired"})
		return
	}
	c.JSON(http.StatusOK, job.snapshot())
}

func (s *Server) handleCancelScan(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found or expired"})
		return
	}
	job.cancel()
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

func (s *Server) handleChart(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	period := model.Period(c.DefaultQuery("period", string(s.config.Scanner.Period)))
	if !period.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported period %q", period)})
		return
	}

	candles, err := s.provider.GetDailyCandles(c.Request.Context(), symbol, period)
	switch {
	case errors.Is(err, provider.ErrNoData) || (err == nil && len(candles) == 0):
		c.JSON(http.StatusNotFound, gin.H{"error": "no price history for " + symbol})
		return
	case err != nil:
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("chart fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "price history unavailable"})
		return
	}

	rows, err := indicator.Compute(candles)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, BuildChart(symbol, symbols.DisplayName(symbol), rows))
}

func (s *Server) handleProfile(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	profile := s.insight.Profile(c.Request.Context(), symbol)
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fundamentals available"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleNews(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	c.JSON(http.StatusOK, s.insight.News(c.Request.Context(), symbol))
}

// StartScan validates req and runs the scan in the background
func (s *Server) StartScan(req ScanRequest) (*scanJob, error) {
	period, label, err := s.normalize(&req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	job := newScanJob(uuid.NewString(), label, period, len(req.Symbols), cancel)
	s.jobs.add(job)

	go s.runScan(ctx, job, req)
	return job, nil
}

// RunScheduledScan scans the configured universe and blocks until done
func (s *Server) RunScheduledScan(ctx context.Context) error {
	req := ScanRequest{Universe: s.config.Server.Universe}
	period, label, err := s.normalize(&req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	job := newScanJob(uuid.NewString(), label, period, 0, cancel)
	s.jobs.add(job)

	s.runScan(ctx, job, req)
	if st := job.snapshot(); st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}

func (s *Server) normalize(req *ScanRequest) (model.Period, string, error) {
	period := req.Period
	if period == "" {
		period = s.config.Scanner.Period
	}
	if !period.Valid() {
		return "", "", fmt.Errorf("unsupported period %q (want 2y or 5y)", period)
	}
	if len(req.Symbols) > 0 {
		return period, "symbols", nil
	}
	return period, string(symbols.ParseUniverse(req.Universe)), nil
}

func (s *Server) runScan(ctx context.Context, job *scanJob, req ScanRequest) {
	defer job.cancel()
	st := job.snapshot()

	var stocks []model.Stock
	if len(req.Symbols) > 0 {
		stocks = s.loader.LoadSymbols(req.Symbols)
	} else {
		stocks = s.loader.Load(ctx, symbols.Universe(st.Universe))
	}
	job.progress(0, len(stocks), "")

	strat, err := strategy.Get("trinity", s.provider, strategy.TrinityConfig{
		Period:  st.Period,
		MinBars: s.config.Scanner.MinBars,
	})
	if err != nil {
		job.finish(StatusFailed, nil, err)
		return
	}

	sc := scanner.NewScanner(strat, s.config.Scanner.Workers, s.config.Scanner.Timeout, s.log).WithMetrics(s.metrics)
	sc.SetProgressCallback(job.progress)

	report, err := sc.Scan(ctx, st.Universe, stocks)
	if report != nil {
		report.ID = st.ID
	}

	switch {
	case err == nil:
		job.finish(StatusDone, report, nil)
	case errors.Is(err, context.Canceled):
		job.finish(StatusCancelled, report, nil)
	default:
		job.finish(StatusFailed, report, err)
	}
}
