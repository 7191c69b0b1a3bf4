package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/translate"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

type stubSource struct {
	profile *model.Profile
	news    []model.NewsItem
	err     error
	limit   int
}

func (s *stubSource) GetProfile(_ context.Context, symbol string) (*model.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.profile
	return &p, nil
}

func (s *stubSource) GetNews(_ context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	s.limit = limit
	return s.news, s.err
}

// upper "translates" by upper-casing so calls are visible
type upper struct{ calls int }

func (u *upper) Translate(_ context.Context, text string) string {
	u.calls++
	if text == translate.NoSummary {
		return text
	}
	return strings.ToUpper(text)
}

func TestProfile(t *testing.T) {
	src := &stubSource{profile: &model.Profile{
		Symbol:    "NVDA",
		LongName:  "NVIDIA Corporation",
		MarketCap: 4_321_098_765_432,
		Summary:   "Designs GPUs.",
	}}
	tr := &upper{}
	svc := NewService(src, src, tr, zerolog.Nop())

	p := svc.Profile(context.Background(), "NVDA")
	if p == nil {
		t.Fatal("expected profile")
	}
	if p.MarketCapText != "43210.99亿" {
		t.Errorf("unexpected market cap text %q", p.MarketCapText)
	}
	if p.Summary != "DESIGNS GPUS." || tr.calls != 1 {
		t.Errorf("expected translated summary, got %q (%d calls)", p.Summary, tr.calls)
	}
}

func TestProfileSummaryFallbacks(t *testing.T) {
	src := &stubSource{profile: &model.Profile{Symbol: "X", LongName: "X Holdings"}}
	svc := NewService(src, src, nil, zerolog.Nop())
	if p := svc.Profile(context.Background(), "X"); p.Summary != "X Holdings" {
		t.Errorf("expected long name fallback, got %q", p.Summary)
	}

	src.profile = &model.Profile{Symbol: "Y"}
	p := svc.Profile(context.Background(), "Y")
	if p.Summary != translate.NoSummary {
		t.Errorf("expected placeholder, got %q", p.Summary)
	}
	if p.MarketCapText != "0.00亿" {
		t.Errorf("unexpected market cap text %q", p.MarketCapText)
	}
}

func TestProfileUnavailable(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	svc := NewService(src, src, nil, zerolog.Nop())
	if p := svc.Profile(context.Background(), "X"); p != nil {
		t.Errorf("expected nil profile, got %+v", p)
	}
}

func TestNews(t *testing.T) {
	src := &stubSource{news: []model.NewsItem{
		{Title: "Chips rally", Link: "https://example.com/a", Publisher: "Wire", Published: "2024-05-01 09:30"},
		{},
		{Title: "3"}, {Title: "4"}, {Title: "5"}, {Title: "6"},
	}}
	svc := NewService(src, src, nil, zerolog.Nop())

	feed := svc.News(context.Background(), "NVDA")
	if src.limit != NewsLimit {
		t.Errorf("expected limit %d requested, got %d", NewsLimit, src.limit)
	}
	if len(feed.Items) != NewsLimit {
		t.Fatalf("expected %d items, got %d", NewsLimit, len(feed.Items))
	}
	blank := feed.Items[1]
	if blank.Title != "No Title" || blank.Link != "#" || blank.Publisher != "Unknown" || blank.Published != "" {
		t.Errorf("defaults not applied: %+v", blank)
	}
	if feed.Items[0].Title != "Chips rally" {
		t.Errorf("unexpected first item: %+v", feed.Items[0])
	}
	if feed.MoreLink != "https://finance.yahoo.com/quote/NVDA/news" {
		t.Errorf("unexpected more link %q", feed.MoreLink)
	}
}

func TestNewsFailureKeepsLink(t *testing.T) {
	src := &stubSource{err: errors.New("timeout")}
	svc := NewService(src, src, nil, zerolog.Nop())

	feed := svc.News(context.Background(), "600519.SS")
	if len(feed.Items) != 0 || feed.Items == nil {
		t.Errorf("expected empty item list, got %+v", feed.Items)
	}
	if feed.MoreLink != "https://finance.yahoo.com/quote/600519.SS/news" {
		t.Errorf("unexpected more link %q", feed.MoreLink)
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := map[float64]string{
		0:             "0.00亿",
		150_000_000:   "1.50亿",
		2_345_678_901: "23.46亿",
	}
	for in, want := range tests {
		if got := FormatMarketCap(in); got != want {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", in, got, want)
		}
	}
}
