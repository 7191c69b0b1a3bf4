package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/config"
	"github.com/jky-sys/Screener-3.0/internal/insight"
	"github.com/jky-sys/Screener-3.0/internal/metrics"
	"github.com/jky-sys/Screener-3.0/internal/provider"
	"github.com/jky-sys/Screener-3.0/internal/symbols"
)

//go:embed static
var staticFiles embed.FS

// Server represents the web server
type Server struct {
	config   *config.Config
	provider provider.Provider
	insight  *insight.Service
	loader   *symbols.Loader
	metrics  *metrics.Metrics
	log      zerolog.Logger

	jobs *jobStore

	// baseCtx bounds background scans; cancelled on Shutdown
	baseCtx    context.Context
	baseCancel context.CancelFunc

	srv *http.Server
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, p provider.Provider, in *insight.Service, loader *symbols.Loader, m *metrics.Metrics, log zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:     cfg,
		provider:   p,
		insight:    in,
		loader:     loader,
		metrics:    m,
		log:        log.With().Str("component", "web").Logger(),
		jobs:       newJobStore(maxRecentScans),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// Handler builds the gin engine with all routes
func (s *Server) Handler() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/universes", s.handleUniverses)

		api.POST("/scans", s.handleStartScan)
		api.GET("/scans", s.handleListScans)
		api.GET("/scans/:id", s.handleGetScan)
		api.DELETE("/scans/:id", s.handleCancelScan)
		api.GET("/scans/:id/ws", s.handleScanProgress)

		api.GET("/stocks/:symbol/chart", s.handleChart)
		api.GET("/stocks/:symbol/profile", s.handleProfile)
		api.GET("/stocks/:symbol/news", s.handleNews)
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	index, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard: %w", err)
	}
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})

	return r, nil
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("screener web UI listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown cancels running scans and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.baseCancel()
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
