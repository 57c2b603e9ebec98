package universe

// Sector describes one GICS sector ETF tracked by the pipeline.
type Sector struct {
	ETF    string
	Name   string
	Color  string
	Weight float64 // approximate S&P 500 index weight, percent
}

// Universe is the immutable instrument configuration injected into the
// pipeline: the sector ETFs, their top holdings and the benchmark. Built
// once at startup; nothing mutates it afterwards.
type Universe struct {
	Benchmark string
	sectors   []Sector
	holdings  map[string][]string
	bySector  map[string]Sector
	sectorOf  map[string]string
}

// Default returns the standard 11-sector S&P 500 universe with SPY as
// benchmark.
func Default() *Universe {
	return New("SPY", defaultSectors, defaultHoldings)
}

// New builds a Universe from explicit tables.
func New(benchmark string, sectors []Sector, holdings map[string][]string) *Universe {
	u := &Universe{
		Benchmark: benchmark,
		sectors:   sectors,
		holdings:  holdings,
		bySector:  make(map[string]Sector, len(sectors)),
		sectorOf:  make(map[string]string),
	}
	for _, s := range sectors {
		u.bySector[s.ETF] = s
	}
	for etf, tickers := range holdings {
		for _, t := range tickers {
			u.sectorOf[t] = etf
		}
	}
	return u
}

// Sectors returns the sector list in display order.
func (u *Universe) Sectors() []Sector {
	return u.sectors
}

// SectorETFs returns the ETF tickers in display order.
func (u *Universe) SectorETFs() []string {
	out := make([]string, len(u.sectors))
	for i, s := range u.sectors {
		out[i] = s.ETF
	}
	return out
}

// Sector looks up one sector's metadata.
func (u *Universe) Sector(etf string) (Sector, bool) {
	s, ok := u.bySector[etf]
	return s, ok
}

// Holdings returns the constituent tickers of a sector ETF.
func (u *Universe) Holdings(etf string) []string {
	return u.holdings[etf]
}

// AllHoldings returns every constituent ticker, deduplicated.
func (u *Universe) AllHoldings() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range u.sectors {
		for _, t := range u.holdings[s.ETF] {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// SectorOf maps a constituent ticker to its sector ETF.
func (u *Universe) SectorOf(ticker string) (string, bool) {
	etf, ok := u.sectorOf[ticker]
	return etf, ok
}

var defaultSectors = []Sector{
	{ETF: "XLK", Name: "Technology", Color: "#3b82f6", Weight: 31.0},
	{ETF: "XLF", Name: "Financials", Color: "#f59e0b", Weight: 13.5},
	{ETF: "XLV", Name: "Health Care", Color: "#22c55e", Weight: 11.5},
	{ETF: "XLY", Name: "Consumer Discretionary", Color: "#f97316", Weight: 10.0},
	{ETF: "XLC", Name: "Communication Services", Color: "#ec4899", Weight: 9.0},
	{ETF: "XLI", Name: "Industrials", Color: "#8b5cf6", Weight: 8.5},
	{ETF: "XLP", Name: "Consumer Staples", Color: "#06b6d4", Weight: 6.0},
	{ETF: "XLE", Name: "Energy", Color: "#ef4444", Weight: 3.5},
	{ETF: "XLU", Name: "Utilities", Color: "#eab308", Weight: 2.5},
	{ETF: "XLB", Name: "Materials", Color: "#a855f7", Weight: 2.5},
	{ETF: "XLRE", Name: "Real Estate", Color: "#14b8a6", Weight: 2.5},
}

// Top holdings per sector ETF (roughly 15-20 per sector).
var defaultHoldings = map[string][]string{
	"XLK": {"AAPL", "MSFT", "NVDA", "AVGO", "CRM", "ADBE", "AMD", "CSCO", "ACN", "ORCL",
		"INTC", "INTU", "TXN", "QCOM", "AMAT", "IBM", "NOW", "MU", "LRCX", "ADI"},
	"XLF": {"BRK-B", "JPM", "V", "MA", "BAC", "WFC", "GS", "SPGI", "MS", "AXP",
		"BLK", "C", "PGR", "CB", "MMC", "ICE", "CME", "SCHW", "AON", "MCO"},
	"XLE": {"XOM", "CVX", "COP", "EOG", "SLB", "MPC", "PSX", "WMB", "VLO", "OKE",
		"HAL", "DVN", "FANG", "BKR", "TRGP", "KMI", "OXY"},
	"XLV": {"UNH", "JNJ", "LLY", "ABBV", "MRK", "TMO", "ABT", "PFE", "DHR", "AMGN",
		"BMY", "MDT", "ELV", "ISRG", "SYK", "GILD", "CI", "VRTX", "ZTS", "BSX"},
	"XLI": {"GE", "CAT", "HON", "UNP", "RTX", "DE", "BA", "UPS", "LMT", "ADP",
		"ETN", "WM", "EMR", "GD", "ITW", "NSC", "PH", "TDG", "CARR", "CTAS"},
	"XLY": {"AMZN", "TSLA", "HD", "MCD", "NKE", "LOW", "BKNG", "SBUX", "TJX", "CMG",
		"ORLY", "MAR", "DHI", "GM", "F", "ROST", "LEN", "YUM", "EBAY", "APTV"},
	"XLP": {"PG", "KO", "PEP", "COST", "WMT", "PM", "MDLZ", "MO", "CL", "KMB",
		"GIS", "SYY", "STZ", "ADM", "HSY", "KHC", "KR", "CLX", "TSN"},
	"XLU": {"NEE", "DUK", "SO", "D", "AEP", "SRE", "EXC", "XEL", "ED", "WEC",
		"ES", "AWK", "DTE", "PPL", "FE", "AEE", "ETR", "CMS", "ATO"},
	"XLB": {"LIN", "APD", "SHW", "ECL", "FCX", "NEM", "NUE", "VMC", "MLM", "DOW",
		"DD", "IFF", "CF", "PPG", "CE", "ALB", "BALL", "EMN", "AVY"},
	"XLC": {"META", "GOOGL", "NFLX", "DIS", "CMCSA", "T", "VZ", "TMUS", "CHTR", "EA",
		"WBD", "OMC", "TTWO", "FOX", "LYV"},
	"XLRE": {"PLD", "AMT", "CCI", "EQIX", "PSA", "SPG", "O", "DLR", "WELL", "AVB",
		"EQR", "VICI", "IRM", "MAA", "ARE", "KIM", "ESS", "UDR", "HST", "REG"},
}
