package symbols

import "strings"

// Universe represents a selectable stock universe
type Universe string

const (
	UniverseAShares   Universe = "a_shares"
	UniverseCustom    Universe = "custom"
	UniverseNasdaq100 Universe = "nas100"
	UniverseSP500     Universe = "sp500"
)

// Universes lists every universe in menu order
var Universes = []Universe{UniverseAShares, UniverseCustom, UniverseNasdaq100, UniverseSP500}

// Description returns a human readable label
func (u Universe) Description() string {
	switch u {
	case UniverseAShares:
		return "A-shares (popular picks)"
	case UniverseNasdaq100:
		return "NASDAQ-100"
	case UniverseSP500:
		return "S&P 500"
	default:
		return "US tech / nuclear watchlist"
	}
}

// ParseUniverse maps user input to a universe. Unknown names select the
// custom watchlist.
func ParseUniverse(s string) Universe {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a_shares", "ashares", "a-shares", "cn":
		return UniverseAShares
	case "nas100", "nasdaq100", "ndx":
		return UniverseNasdaq100
	case "sp500", "spx":
		return UniverseSP500
	default:
		return UniverseCustom
	}
}

// GetUniverse returns the static symbol list for u. Index universes return
// their fallback lists; use Loader for live membership.
func GetUniverse(u Universe) []string {
	switch u {
	case UniverseAShares:
		syms := make([]string, len(ASharesSymbols))
		for i, s := range ASharesSymbols {
			syms[i] = s.Symbol
		}
		return syms
	case UniverseNasdaq100:
		return Nasdaq100Fallback
	case UniverseSP500:
		return SP500Fallback
	default:
		return CustomSymbols
	}
}

// DisplayName marks Shanghai and Shenzhen listings for display
func DisplayName(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".SS"):
		return strings.TrimSuffix(symbol, ".SS") + " (沪)"
	case strings.HasSuffix(symbol, ".SZ"):
		return strings.TrimSuffix(symbol, ".SZ") + " (深)"
	default:
		return symbol
	}
}

// CustomSymbols is the US watchlist: semis, space, crypto, tech, nuclear, security
var CustomSymbols = []string{
	// Semiconductors
	"NVDA", "AMD", "TSM", "AVGO", "INTC", "QCOM", "MU", "TXN",
	"AMAT", "LRCX", "ASML", "ARM", "SMCI", "MRVL", "ON", "ADI",
	"KLAC", "SNPS", "CDNS", "TER", "WDC", "PSTG",
	// Aerospace & space
	"RKLB", "SPCE", "LUNR", "ASTS", "BA", "LMT", "NOC", "RTX",
	"GD", "AXON", "PLTR", "SPIR", "BKSY", "RDW",
	// Crypto
	"MSTR", "COIN", "MARA", "RIOT", "CLSK", "IREN", "HUT",
	"BITF", "HOOD", "SQ", "PYPL", "CIFR", "WULF", "CORZ", "SDIG",
	// Tech
	"TSLA", "AAPL", "MSFT", "GOOGL", "META", "AMZN",
	"NET", "SNOW", "U", "DKNG", "RBLX", "AI", "PATH", "JOBY",
	// Nuclear & energy
	"SMR", "OKLO", "CCJ", "UEC", "NNE", "BWXT", "LEU", "FLR",
	"CEG", "VST", "TLN", "GCT",
	// Security & frontier tech
	"CRWD", "NBIS", "PANW", "ZS", "FTNT", "S", "SENT", "OKTA",
	"IONQ", "RGTI", "QUBT", "DNA",
}

// ASharesSymbols are popular A-shares (.SS Shanghai, .SZ Shenzhen)
var ASharesSymbols = []struct {
	Symbol string
	Name   string
}{
	{"600519.SS", "贵州茅台"},
	{"300750.SZ", "宁德时代"},
	{"002594.SZ", "比亚迪"},
	{"601318.SS", "中国平安"},
	{"600036.SS", "招商银行"},
	{"601888.SS", "中国中免"},
	{"000858.SZ", "五粮液"},
	{"000568.SZ", "泸州老窖"},
	{"300059.SZ", "东方财富"},
	{"600276.SS", "恒瑞医药"},
	{"603288.SS", "海天味业"},
	{"002475.SZ", "立讯精密"},
	{"601012.SS", "隆基绿能"},
	{"002371.SZ", "北方华创"},
	{"600900.SS", "长江电力"},
	{"601899.SS", "紫金矿业"},
	{"000333.SZ", "美的集团"},
	{"601988.SS", "中国银行"},
	{"600028.SS", "中国石化"},
	{"002230.SZ", "科大讯飞"},
	{"603986.SS", "兆易创新"},
	{"600522.SS", "中天科技"},
	{"600150.SS", "中国船舶"},
}

// Nasdaq100Fallback is used when index membership cannot be fetched
var Nasdaq100Fallback = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "META", "TSLA", "GOOGL", "AMD",
	"QCOM", "INTC", "CSCO", "PEP", "AVGO", "COST", "TMUS",
}

// SP500Fallback is used when index membership cannot be fetched
var SP500Fallback = []string{
	"MSFT", "AAPL", "NVDA", "AMZN", "META", "GOOGL", "BRK-B", "LLY", "JPM", "TSLA",
	"XOM", "UNH", "V", "PG", "MA", "HD", "CVX", "MRK", "ABBV", "KO",
}
