package model

import "time"

// Candle represents a single daily bar (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Stock represents basic stock information
type Stock struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"` // NASDAQ, NYSE, SS, SZ
}

// Period is the history window requested from a price provider
type Period string

const (
	Period2Y Period = "2y"
	Period5Y Period = "5y"
)

// Valid reports whether p is a supported history window
func (p Period) Valid() bool {
	return p == Period2Y || p == Period5Y
}

// Profile holds the fundamentals shown next to a candidate
type Profile struct {
	Symbol        string  `json:"symbol"`
	LongName      string  `json:"long_name"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapText string  `json:"market_cap_text"` // in 亿 units
	TrailingPE    string  `json:"trailing_pe"`
	High52W       string  `json:"high_52w"`
	Summary       string  `json:"summary"`
	Industry      string  `json:"industry"`
	Sector        string  `json:"sector"`
}

// NewsItem is one headline for a symbol
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Publisher string `json:"publisher"`
	Published string `json:"published"` // "2006-01-02 15:04" or empty
}

// NewsFeed is a symbol's headlines plus the external link that is always shown
type NewsFeed struct {
	Symbol   string     `json:"symbol"`
	Items    []NewsItem `json:"items"`
	MoreLink string     `json:"more_link"`
}
