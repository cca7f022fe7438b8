package market

import (
	"fmt"
	"strings"
	"time"
)

// SourceMock is the pseudo-source label used when synthetic data is
// served because every real provider is exhausted.
const SourceMock = "mock"

// QueryType identifies one of the three logical query shapes.
type QueryType string

const (
	QueryMarketList   QueryType = "markets"
	QueryAssetDetail  QueryType = "detail"
	QueryAssetHistory QueryType = "history"
)

// TTLs applied to cached canonical payloads, per query type.
const (
	MarketListTTL   = 10 * time.Minute
	AssetDetailTTL  = 15 * time.Minute
	AssetHistoryTTL = 20 * time.Minute
)

// TTL returns the cache lifetime for this query type.
func (t QueryType) TTL() time.Duration {
	switch t {
	case QueryAssetDetail:
		return AssetDetailTTL
	case QueryAssetHistory:
		return AssetHistoryTTL
	default:
		return MarketListTTL
	}
}

// Query is one logical request against the engine. Currency is a
// lowercase fiat/crypto code ("usd"), AssetID a canonical asset id
// ("bitcoin"), Days the history range. Unused parameters stay zero.
type Query struct {
	Type     QueryType
	Currency string
	AssetID  string
	Days     int
}

// Key derives the cache key. Every parameter participates so distinct
// parameter combinations never collide.
func (q Query) Key() string {
	switch q.Type {
	case QueryAssetDetail:
		return fmt.Sprintf("detail:%s:%s", q.AssetID, q.Currency)
	case QueryAssetHistory:
		return fmt.Sprintf("history:%s:%s:%d", q.AssetID, q.Currency, q.Days)
	default:
		return fmt.Sprintf("markets:%s", q.Currency)
	}
}

// Entry is one row of a market listing.
type Entry struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Image            string  `json:"image"`
	CurrentPrice     float64 `json:"current_price"`
	MarketCap        float64 `json:"market_cap"`
	Volume24h        float64 `json:"total_volume"`
	ChangePercent24h float64 `json:"price_change_percentage_24h"`
	MarketCapRank    int     `json:"market_cap_rank"`
}

// ChangeSet holds multi-horizon price change percentages.
type ChangeSet struct {
	H24  float64 `json:"24h"`
	D7   float64 `json:"7d"`
	D30  float64 `json:"30d"`
	D60  float64 `json:"60d"`
	D200 float64 `json:"200d"`
	Y1   float64 `json:"1y"`
}

// Extreme is an all-time high or low with its date and the change
// percent from it to the current price.
type Extreme struct {
	Price         float64   `json:"price"`
	Date          time.Time `json:"date"`
	ChangePercent float64   `json:"change_percent"`
}

// Supply holds circulating/total/max supply. Zero means the provider
// reported none; keys are always present in the JSON encoding.
type Supply struct {
	Circulating float64 `json:"circulating"`
	Total       float64 `json:"total"`
	Max         float64 `json:"max"`
}

// Links groups external references by category. Slices are always
// non-nil so consumers never see a missing key.
type Links struct {
	Homepage   []string `json:"homepage"`
	Explorers  []string `json:"explorers"`
	Forums     []string `json:"forums"`
	Repos      []string `json:"repos"`
}

// Detail is the full per-asset payload.
type Detail struct {
	Entry
	Prices      map[string]float64 `json:"prices"`
	MarketCaps  map[string]float64 `json:"market_caps"`
	Volumes     map[string]float64 `json:"volumes"`
	Changes     ChangeSet          `json:"changes"`
	Supply      Supply             `json:"supply"`
	ATH         Extreme            `json:"ath"`
	ATL         Extreme            `json:"atl"`
	Description string             `json:"description"`
	Links       Links              `json:"links"`
}

// Point is one (timestamp, value) sample. Timestamps are Unix
// milliseconds, matching what charting consumers expect.
type Point struct {
	Timestamp int64   `json:"t"`
	Value     float64 `json:"v"`
}

// ChartSeries holds three parallel time-indexed sequences in strictly
// ascending timestamp order.
type ChartSeries struct {
	Prices     []Point `json:"prices"`
	MarketCaps []Point `json:"market_caps"`
	Volumes    []Point `json:"total_volumes"`
}

// Validate checks the series invariants: equal lengths and strictly
// ascending timestamps in every sequence.
func (s ChartSeries) Validate() error {
	if len(s.Prices) != len(s.MarketCaps) || len(s.Prices) != len(s.Volumes) {
		return fmt.Errorf("series length mismatch: prices=%d market_caps=%d volumes=%d",
			len(s.Prices), len(s.MarketCaps), len(s.Volumes))
	}
	for _, seq := range [][]Point{s.Prices, s.MarketCaps, s.Volumes} {
		for i := 1; i < len(seq); i++ {
			if seq[i].Timestamp <= seq[i-1].Timestamp {
				return fmt.Errorf("timestamps not strictly ascending at index %d", i)
			}
		}
	}
	return nil
}

// NormalizeLinks replaces nil slices with empty ones so the encoded
// payload never drops a key.
func NormalizeLinks(l Links) Links {
	if l.Homepage == nil {
		l.Homepage = []string{}
	}
	if l.Explorers == nil {
		l.Explorers = []string{}
	}
	if l.Forums == nil {
		l.Forums = []string{}
	}
	if l.Repos == nil {
		l.Repos = []string{}
	}
	return l
}

// SupportedCurrencies is the allow-list accepted by the HTTP surface.
var SupportedCurrencies = []string{"usd", "eur", "gbp", "jpy", "btc", "eth"}

// CurrencySupported reports whether the lowercase code is accepted.
func CurrencySupported(code string) bool {
	code = strings.ToLower(code)
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
