package symbols

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

const (
	nasdaq100URL = "https://en.wikipedia.org/wiki/Nasdaq-100"
	sp500URL     = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
)

// Loader resolves a universe to the stocks to scan
type Loader struct {
	client *http.Client
	log    zerolog.Logger
	urls   map[Universe]string
}

// NewLoader creates a symbol loader
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: 20 * time.Second},
		log:    log.With().Str("component", "symbols").Logger(),
		urls: map[Universe]string{
			UniverseNasdaq100: nasdaq100URL,
			UniverseSP500:     sp500URL,
		},
	}
}

// Load returns the stocks of u. Index universes are scraped from their
// constituents page; any failure falls back to the static list, so Load
// always returns a usable universe.
func (l *Loader) Load(ctx context.Context, u Universe) []model.Stock {
	switch u {
	case UniverseAShares:
		stocks := make([]model.Stock, len(ASharesSymbols))
		for i, s := range ASharesSymbols {
			stocks[i] = model.Stock{Symbol: s.Symbol, Name: s.Name, Exchange: exchangeOf(s.Symbol)}
		}
		return stocks
	case UniverseNasdaq100, UniverseSP500:
		stocks, err := l.scrape(ctx, l.urls[u])
		if err != nil || len(stocks) == 0 {
			l.log.Warn().Err(err).Str("universe", string(u)).Msg("index membership unavailable, using fallback list")
			return toStocks(GetUniverse(u))
		}
		return stocks
	default:
		return toStocks(CustomSymbols)
	}
}

// LoadSymbols builds stocks from user-supplied tickers
func (l *Loader) LoadSymbols(symbols []string) []model.Stock {
	seen := make(map[string]bool, len(symbols))
	stocks := make([]model.Stock, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		stocks = append(stocks, model.Stock{Symbol: sym, Name: sym, Exchange: exchangeOf(sym)})
	}
	return stocks
}

// scrape reads the first table on the page with a Symbol (or Ticker)
// column. Dots become dashes (BRK.B -> BRK-B) and duplicates are dropped.
func (l *Loader) scrape(ctx context.Context, url string) ([]model.Stock, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return parseConstituents(doc)
}

func parseConstituents(doc *goquery.Document) ([]model.Stock, error) {
	var stocks []model.Stock
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		symbolCol, nameCol := -1, -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			switch strings.TrimSpace(th.Text()) {
			case "Symbol":
				symbolCol = i
			case "Ticker":
				if symbolCol < 0 {
					symbolCol = i
				}
			case "Security", "Company":
				nameCol = i
			}
		})
		if symbolCol < 0 {
			return true
		}

		found = true
		seen := make(map[string]bool)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() <= symbolCol {
				return
			}
			sym := strings.ReplaceAll(strings.TrimSpace(cells.Eq(symbolCol).Text()), ".", "-")
			if sym == "" || seen[sym] {
				return
			}
			seen[sym] = true
			name := sym
			if nameCol >= 0 && cells.Length() > nameCol {
				name = strings.TrimSpace(cells.Eq(nameCol).Text())
			}
			stocks = append(stocks, model.Stock{Symbol: sym, Name: name, Exchange: "US"})
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no constituents table found")
	}
	return stocks, nil
}

func toStocks(symbols []string) []model.Stock {
	stocks := make([]model.Stock, len(symbols))
	for i, sym := range symbols {
		stocks[i] = model.Stock{Symbol: sym, Name: sym, Exchange: exchangeOf(sym)}
	}
	return stocks
}

func exchangeOf(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".SS"):
		return "SS"
	case strings.HasSuffix(symbol, ".SZ"):
		return "SZ"
	default:
		return "US"
	}
}
