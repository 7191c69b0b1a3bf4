package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jky-sys/Screener-3.0/internal/provider"
	"github.com/jky-sys/Screener-3.0/internal/translate"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// NewsLimit is the number of headlines shown per symbol
const NewsLimit = 5

// hundredMillion is one 亿
var hundredMillion = decimal.New(1, 8)

// Service assembles the fundamentals and news shown next to a candidate
type Service struct {
	profiles   provider.ProfileSource
	news       provider.NewsSource
	translator translate.Translator
	log        zerolog.Logger
}

// NewService creates an insight service. A nil translator keeps summaries
// in their original language.
func NewService(profiles provider.ProfileSource, news provider.NewsSource, tr translate.Translator, log zerolog.Logger) *Service {
	if tr == nil {
		tr = translate.Nop{}
	}
	return &Service{
		profiles:   profiles,
		news:       news,
		translator: tr,
		log:        log.With().Str("component", "insight").Logger(),
	}
}

// Profile returns the symbol's fundamentals with a translated summary, or
// nil when none are available.
func (s *Service) Profile(ctx context.Context, symbol string) *model.Profile {
	p, err := s.profiles.GetProfile(ctx, symbol)
	if err != nil || p == nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("no profile")
		return nil
	}

	p.MarketCapText = FormatMarketCap(p.MarketCap)
	if strings.TrimSpace(p.Summary) == "" {
		p.Summary = p.LongName
	}
	if strings.TrimSpace(p.Summary) == "" {
		p.Summary = translate.NoSummary
	}
	p.Summary = s.translator.Translate(ctx, p.Summary)
	return p
}

// News returns up to NewsLimit headlines. The Yahoo news page link is
// always set, including when the fetch fails.
func (s *Service) News(ctx context.Context, symbol string) model.NewsFeed {
	feed := model.NewsFeed{
		Symbol:   symbol,
		Items:    []model.NewsItem{},
		MoreLink: NewsPageURL(symbol),
	}

	items, err := s.news.GetNews(ctx, symbol, NewsLimit)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("news unavailable")
		return feed
	}

	for _, item := range items {
		if len(feed.Items) == NewsLimit {
			break
		}
		if item.Title == "" {
			item.Title = "No Title"
		}
		if item.Link == "" {
			item.Link = "#"
		}
		if item.Publisher == "" {
			item.Publisher = "Unknown"
		}
		feed.Items = append(feed.Items, item)
	}
	return feed
}

// FormatMarketCap renders a market cap in 亿 with two decimals
func FormatMarketCap(v float64) string {
	return decimal.NewFromFloat(v).Div(hundredMillion).StringFixed(2) + "亿"
}

// NewsPageURL is the Yahoo Finance news page for symbol
func NewsPageURL(symbol string) string {
	return fmt.Sprintf("https://finance.yahoo.com/quote/%s/news", symbol)
}
