package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/cache"
	"github.com/jky-sys/Screener-3.0/internal/config"
	"github.com/jky-sys/Screener-3.0/internal/insight"
	"github.com/jky-sys/Screener-3.0/internal/metrics"
	"github.com/jky-sys/Screener-3.0/internal/provider"
	"github.com/jky-sys/Screener-3.0/internal/symbols"
	"github.com/jky-sys/Screener-3.0/internal/translate"
	"github.com/jky-sys/Screener-3.0/internal/util"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    cache.Store
	yahoo    *provider.YahooProvider
	provider provider.Provider
	insight  *insight.Service
	loader   *symbols.Loader
	metrics  *metrics.Metrics
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cacheBackend != "" {
		cfg.Cache.Backend = cacheBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := util.NewConsoleLogger(os.Stderr, cfg.Log.Level)

	store, err := cache.Open(ctx, cache.Options{
		Backend:    cfg.Cache.Backend,
		RedisAddr:  cfg.Cache.RedisAddr,
		SQLitePath: cfg.Cache.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}

	m := metrics.New()
	yahoo := provider.NewYahooProvider(cfg.Provider.Yahoo.RateLimit, cfg.Provider.Yahoo.Timeout)

	fallback := provider.NewFallbackProvider(yahoo)
	var p provider.Provider = fallback
	if store != nil {
		p = provider.NewCachingProvider(p, store, cfg.Cache.TTL, log).WithMetrics(m)
	}

	var tr translate.Translator = translate.Nop{}
	if cfg.Translate.Enabled {
		tr = translate.NewGoogle(cfg.Translate.Target, log)
	}

	log.Debug().
		Str("cache", cfg.Cache.Backend).
		Str("period", string(cfg.Scanner.Period)).
		Int("workers", cfg.Scanner.Workers).
		Int("providers", len(fallback.Providers())).
		Int("rate_limit", fallback.RateLimit()).
		Msg("configured")

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		yahoo:    yahoo,
		provider: p,
		insight:  insight.NewService(yahoo, yahoo, tr, log),
		loader:   symbols.NewLoader(log),
		metrics:  m,
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing cache")
		}
	}
}
