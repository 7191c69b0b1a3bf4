package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	logLevel     string
	cacheBackend string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "screener",
		Short: "Daily-bar screener for early accumulation and breakout setups",
		Long: `Screener scans a stock universe for names that accumulated near a
multi-month low, have just turned their EMA channel up, and show momentum
confirmation (a bullish divergence or a fresh golden cross).

Universes:
  a_shares  - popular Shanghai / Shenzhen listings
  custom    - US semis, space, crypto, tech, nuclear and security watchlist
  nas100    - NASDAQ-100 constituents
  sp500     - S&P 500 constituents

Examples:
  screener scan --universe nas100
  screener scan --symbols NVDA,AMD,TSM --format json
  screener serve --addr :8080`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "", "candle cache: memory, redis, sqlite, none")

	rootCmd.AddCommand(newScanCmd(), newServeCmd(), newUniversesCmd(), newCacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
