package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jky-sys/Screener-3.0/internal/scanner"
	"github.com/jky-sys/Screener-3.0/internal/strategy"
	"github.com/jky-sys/Screener-3.0/internal/symbols"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

func newScanCmd() *cobra.Command {
	var (
		universe   string
		symbolList string
		period     string
		workers    int
		format     string
		details    int
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a universe and print candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle interrupt
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping scan...")
				cancel()
			}()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("period") {
				a.cfg.Scanner.Period = model.Period(period)
			}
			if workers > 0 {
				a.cfg.Scanner.Workers = workers
			}
			if !a.cfg.Scanner.Period.Valid() {
				return fmt.Errorf("unsupported period %q (want 2y or 5y)", a.cfg.Scanner.Period)
			}

			var stocks []model.Stock
			label := string(symbols.ParseUniverse(universe))
			if symbolList != "" {
				stocks = a.loader.LoadSymbols(strings.Split(symbolList, ","))
				label = "symbols"
			} else {
				fmt.Fprintf(os.Stderr, "Loading %s universe...\n", symbols.ParseUniverse(universe).Description())
				stocks = a.loader.Load(ctx, symbols.ParseUniverse(universe))
			}
			if len(stocks) == 0 {
				return fmt.Errorf("no stocks to scan")
			}

			strat, err := strategy.Get("trinity", a.provider, strategy.TrinityConfig{
				Period:  a.cfg.Scanner.Period,
				MinBars: a.cfg.Scanner.MinBars,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Scanning %d stocks (%s history)...\n\n", len(stocks), a.cfg.Scanner.Period)

			s := scanner.NewScanner(strat, a.cfg.Scanner.Workers, a.cfg.Scanner.Timeout, a.log).WithMetrics(a.metrics)

			bar := progressbar.NewOptions(len(stocks),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Scanning"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
			s.SetProgressCallback(func(scanned, total int, symbol string) {
				bar.Describe(fmt.Sprintf("Scanning %-10s", symbol))
				bar.Set(scanned)
			})

			report, err := s.Scan(ctx, label, stocks)
			bar.Finish()
			fmt.Fprintln(os.Stderr)
			if err != nil {
				if report == nil {
					return fmt.Errorf("scanning: %w", err)
				}
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(os.Stderr, "Scan interrupted; showing partial results.")
				} else {
					fmt.Fprintf(os.Stderr, "Scan stopped early: %v\n", err)
				}
			}

			if format == "json" {
				return outputJSON(report)
			}
			outputTable(report)
			if details > 0 {
				printDetails(ctx, a, report, details)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&universe, "universe", "custom", "universe: a_shares, custom, nas100, sp500")
	cmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated list of symbols to scan instead of a universe")
	cmd.Flags().StringVar(&period, "period", "2y", "history window: 2y, 5y")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (default from config)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	cmd.Flags().IntVar(&details, "details", 0, "show fundamentals and news for the top N candidates")
	return cmd
}

func outputTable(report *scanner.Report) {
	if len(report.Candidates) == 0 {
		fmt.Println("No candidates found this time.")
		fmt.Printf("Scanned %d stocks in %s (%d skipped, %d failed)\n",
			report.TotalScanned, report.ScanTime.Round(time.Second), report.Skipped, report.Failed)
		return
	}

	fmt.Printf("Found %d candidates:\n\n", len(report.Candidates))

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Name", "Price", "Score", "Signal", "Label"}),
	)

	for _, s := range report.Candidates {
		name := s.Stock.Name
		if r := []rune(name); len(r) > 18 {
			name = string(r[:18]) + "..."
		}

		table.Append([]string{
			symbols.DisplayName(s.Stock.Symbol),
			name,
			fmt.Sprintf("%.2f", s.LatestClose),
			fmt.Sprintf("%d", s.Score),
			s.Severity,
			s.Label,
		})
	}

	table.Render()

	fmt.Printf("\nScanned %d stocks in %s (%d skipped, %d failed)\n",
		report.TotalScanned, report.ScanTime.Round(time.Second), report.Skipped, report.Failed)
}

func outputJSON(report *scanner.Report) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printDetails(ctx context.Context, a *app, report *scanner.Report, n int) {
	fmt.Println("\n--- Candidate Details ---")
	for i, s := range report.Candidates {
		if i >= n || ctx.Err() != nil {
			break
		}
		fmt.Printf("\n[%s] %s  %s\n", symbols.DisplayName(s.Stock.Symbol), s.Stock.Name, s.Severity)

		if p := a.insight.Profile(ctx, s.Stock.Symbol); p != nil {
			fmt.Printf("  Market cap: %s | PE: %s | 52w high: %s\n", p.MarketCapText, p.TrailingPE, p.High52W)
			fmt.Printf("  Industry: %s | Sector: %s\n", p.Industry, p.Sector)
			fmt.Printf("  %s\n", p.Summary)
		} else {
			fmt.Println("  No fundamentals available.")
		}

		feed := a.insight.News(ctx, s.Stock.Symbol)
		for _, item := range feed.Items {
			fmt.Printf("  - %s (%s, %s)\n", item.Title, item.Publisher, item.Published)
		}
		fmt.Printf("  More news: %s\n", feed.MoreLink)
	}
}
