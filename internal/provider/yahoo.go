package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
	_ "time/tzdata"

	"github.com/jky-sys/Screener-3.0/internal/ratelimit"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	yahooSearchURL  = "https://query1.finance.yahoo.com/v1/finance/search"
	yahooUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	limitChart   = "chart"
	limitSummary = "summary"
	limitSearch  = "search"
)

// YahooProvider serves daily history, fundamentals and news from the
// unofficial Yahoo Finance endpoints.
type YahooProvider struct {
	client    *http.Client
	limiter   *ratelimit.MultiLimiter
	rateLimit int

	chartURL   string
	summaryURL string
	searchURL  string
}

// NewYahooProvider creates a Yahoo Finance provider limited to perMinute
// requests per endpoint
func NewYahooProvider(perMinute int, timeout time.Duration) *YahooProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := ratelimit.NewMultiLimiter()
	limiter.Add(limitChart, perMinute)
	limiter.Add(limitSummary, perMinute)
	limiter.Add(limitSearch, perMinute)

	return &YahooProvider{
		client:     &http.Client{Timeout: timeout},
		limiter:    limiter,
		rateLimit:  perMinute,
		chartURL:   yahooChartURL,
		summaryURL: yahooSummaryURL,
		searchURL:  yahooSearchURL,
	}
}

// Name returns the provider name
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// IsAvailable always returns true (no API key needed)
func (p *YahooProvider) IsAvailable() bool {
	return true
}

// RateLimit returns the rate limit per minute
func (p *YahooProvider) RateLimit() int {
	return p.rateLimit
}

// yahooChartResponse is the chart API payload; nulls mark missing bars
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetDailyCandles fetches split/dividend-adjusted daily bars for period
func (p *YahooProvider) GetDailyCandles(ctx context.Context, symbol string, period model.Period) ([]model.Candle, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("unsupported period: %s", period)
	}

	q := url.Values{}
	q.Set("range", string(period))
	q.Set("interval", "1d")
	q.Set("includeAdjustedClose", "true")
	q.Set("events", "div,split")
	endpoint := fmt.Sprintf("%s/%s?%s", p.chartURL, url.PathEscape(symbol), q.Encode())

	var data yahooChartResponse
	if err := p.getJSON(ctx, limitChart, endpoint, &data); err != nil {
		return nil, err
	}

	if data.Chart.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s: %w", data.Chart.Error.Description, ErrNoData), Retryable: false}
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}

	result := data.Chart.Result[0]
	quotes := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	loc := time.UTC
	if tz, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
		loc = tz
	}

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quotes.Open, i), at(quotes.High, i), at(quotes.Low, i), at(quotes.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}

		candle := model.Candle{Time: dayOf(time.Unix(ts, 0).In(loc)), Open: *o, High: *h, Low: *l, Close: *c}
		if i < len(quotes.Volume) && quotes.Volume[i] != nil {
			candle.Volume = *quotes.Volume[i]
		}
		if a := at(adj, i); a != nil && *c != 0 {
			factor := *a / *c
			candle.Open *= factor
			candle.High *= factor
			candle.Low *= factor
			candle.Close = *a
		}
		candles = append(candles, candle)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	candles = dedupeByDay(candles)

	if len(candles) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}
	return candles, nil
}

// yahooSummaryResponse is the subset of quoteSummary modules we read
type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  string     `json:"longName"`
				MarketCap yahooValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       yahooValue `json:"trailingPE"`
				FiftyTwoWeekHigh yahooValue `json:"fiftyTwoWeekHigh"`
			} `json:"summaryDetail"`
			AssetProfile struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
				Industry            string `json:"industry"`
				Sector              string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

type yahooValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v yahooValue) text() string {
	if v.Raw == nil {
		return "N/A"
	}
	if v.Fmt != "" {
		return v.Fmt
	}
	return fmt.Sprintf("%.2f", *v.Raw)
}

// GetProfile fetches fundamentals. Missing values are reported as "N/A";
// the summary falls back to the long name when absent.
func (p *YahooProvider) GetProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	endpoint := fmt.Sprintf("%s/%s?modules=price,summaryDetail,assetProfile", p.summaryURL, url.PathEscape(symbol))

	var data yahooSummaryResponse
	if err := p.getJSON(ctx, limitSummary, endpoint, &data); err != nil {
		return nil, err
	}
	if data.QuoteSummary.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.QuoteSummary.Error.Description), Retryable: false}
	}
	if len(data.QuoteSummary.Result) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}

	r := data.QuoteSummary.Result[0]
	profile := &model.Profile{
		Symbol:     symbol,
		LongName:   r.Price.LongName,
		TrailingPE: r.SummaryDetail.TrailingPE.text(),
		High52W:    r.SummaryDetail.FiftyTwoWeekHigh.text(),
		Summary:    r.AssetProfile.LongBusinessSummary,
		Industry:   orNA(r.AssetProfile.Industry),
		Sector:     orNA(r.AssetProfile.Sector),
	}
	if r.Price.MarketCap.Raw != nil {
		profile.MarketCap = *r.Price.MarketCap.Raw
	}
	if profile.Summary == "" {
		profile.Summary = r.Price.LongName
	}
	return profile, nil
}

// yahooSearchResponse carries the news part of the search API
type yahooSearchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// GetNews fetches up to limit recent headlines for symbol
func (p *YahooProvider) GetNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", fmt.Sprintf("%d", limit))
	endpoint := p.searchURL + "?" + q.Encode()

	var data yahooSearchResponse
	if err := p.getJSON(ctx, limitSearch, endpoint, &data); err != nil {
		return nil, err
	}

	items := make([]model.NewsItem, 0, len(data.News))
	for _, n := range data.News {
		if len(items) >= limit {
			break
		}
		item := model.NewsItem{
			Title:     n.Title,
			Link:      n.Link,
			Publisher: n.Publisher,
		}
		if n.ProviderPublishTime > 0 {
			item.Published = time.Unix(n.ProviderPublishTime, 0).Format("2006-01-02 15:04")
		}
		items = append(items, item)
	}
	return items, nil
}

// getJSON performs a rate-limited GET and decodes the body into out
func (p *YahooProvider) getJSON(ctx context.Context, limit, endpoint string, out any) error {
	if err := p.limiter.Wait(ctx, limit); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.SignalRateLimited(limit)
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	// The chart API answers 404 with a JSON error body for unknown symbols.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: resp.StatusCode >= 500}
	}

	p.limiter.ResetBackoff(limit)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// dayOf truncates t to midnight in its own location
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dedupeByDay keeps the last bar for each day of an ascending series; the
// chart API can repeat the current session as a separate live bar.
func dedupeByDay(candles []model.Candle) []model.Candle {
	out := candles[:0]
	for _, c := range candles {
		if n := len(out); n > 0 && out[n-1].Time.Equal(c.Time) {
			out[n-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
