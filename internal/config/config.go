package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jky-sys/Screener-3.0/internal/cache"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// Config represents the application configuration
type Config struct {
	Scanner   ScannerConfig   `yaml:"scanner"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Translate TranslateConfig `yaml:"translate"`
	Log       LogConfig       `yaml:"log"`
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
	Period  model.Period  `yaml:"period"`
	MinBars int           `yaml:"min_bars"`
}

// ProviderConfig holds market data provider settings
type ProviderConfig struct {
	Yahoo YahooConfig `yaml:"yahoo"`
}

// YahooConfig holds Yahoo Finance settings
type YahooConfig struct {
	RateLimit int           `yaml:"rate_limit"` // requests per minute
	Timeout   time.Duration `yaml:"timeout"`
}

// CacheConfig selects the candle cache backend
type CacheConfig struct {
	Backend    string        `yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	RedisAddr  string        `yaml:"redis_addr"`
	SQLitePath string        `yaml:"sqlite_path"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Schedule string `yaml:"schedule"` // cron spec; empty disables scheduled scans
	Universe string `yaml:"universe"` // universe for scheduled scans
}

// TranslateConfig controls company summary translation
type TranslateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Target  string `yaml:"target"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Workers: 10,
			Timeout: 10 * time.Minute,
			Period:  model.Period2Y,
			MinBars: 200,
		},
		Provider: ProviderConfig{
			Yahoo: YahooConfig{
				RateLimit: 60,
				Timeout:   30 * time.Second,
			},
		},
		Cache: CacheConfig{
			Backend:    cache.BackendMemory,
			TTL:        time.Hour,
			RedisAddr:  "localhost:6379",
			SQLitePath: "screener-cache.db",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Universe: "custom",
		},
		Translate: TranslateConfig{
			Enabled: true,
			Target:  "zh-CN",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Values from a .env file and the environment override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// .env is optional
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCREENER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SCREENER_CACHE"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("SCREENER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing SCREENER_WORKERS: %w", err)
		}
		c.Scanner.Workers = n
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if !c.Scanner.Period.Valid() {
		return fmt.Errorf("unsupported period %q (want 2y or 5y)", c.Scanner.Period)
	}
	if c.Scanner.MinBars < 1 {
		return fmt.Errorf("min_bars must be at least 1")
	}
	if c.Provider.Yahoo.RateLimit < 1 {
		return fmt.Errorf("provider rate_limit must be at least 1")
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendMemory, cache.BackendRedis, cache.BackendSQLite, "":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
