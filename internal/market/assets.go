package market

import "strings"

// Asset is one row of the cross-provider identity catalog. Providers
// disagree about how to name an asset (CoinGecko uses "bitcoin",
// CoinPaprika "btc-bitcoin", Binance trades the "BTCUSDT" pair), so
// the catalog is the single translation table the registry, the
// normalizers, and the mock generator all share.
type Asset struct {
	ID          string  // canonical id, CoinGecko-style
	Symbol      string  // ticker, lowercase
	Name        string
	PaprikaID   string  // CoinPaprika asset id
	CoinCapID   string  // CoinCap asset id
	BinancePair string  // USDT spot pair, empty if not listed
	Supply      float64 // approximate circulating supply
	BasePrice   float64 // USD anchor for synthetic data
}

// Catalog lists the well-known assets the system can always resolve.
// Order doubles as the default market-cap rank for providers that do
// not report one.
var Catalog = []Asset{
	{ID: "bitcoin", CoinCapID: "bitcoin", Symbol: "btc", Name: "Bitcoin", PaprikaID: "btc-bitcoin", BinancePair: "BTCUSDT", Supply: 19_700_000, BasePrice: 65000},
	{ID: "ethereum", CoinCapID: "ethereum", Symbol: "eth", Name: "Ethereum", PaprikaID: "eth-ethereum", BinancePair: "ETHUSDT", Supply: 120_200_000, BasePrice: 3400},
	{ID: "tether", CoinCapID: "tether", Symbol: "usdt", Name: "Tether", PaprikaID: "usdt-tether", BinancePair: "", Supply: 112_000_000_000, BasePrice: 1},
	{ID: "binancecoin", CoinCapID: "binance-coin", Symbol: "bnb", Name: "BNB", PaprikaID: "bnb-binance-coin", BinancePair: "BNBUSDT", Supply: 147_500_000, BasePrice: 580},
	{ID: "solana", CoinCapID: "solana", Symbol: "sol", Name: "Solana", PaprikaID: "sol-solana", BinancePair: "SOLUSDT", Supply: 463_000_000, BasePrice: 150},
	{ID: "ripple", CoinCapID: "xrp", Symbol: "xrp", Name: "XRP", PaprikaID: "xrp-xrp", BinancePair: "XRPUSDT", Supply: 55_500_000_000, BasePrice: 0.52},
	{ID: "cardano", CoinCapID: "cardano", Symbol: "ada", Name: "Cardano", PaprikaID: "ada-cardano", BinancePair: "ADAUSDT", Supply: 35_900_000_000, BasePrice: 0.45},
	{ID: "dogecoin", CoinCapID: "dogecoin", Symbol: "doge", Name: "Dogecoin", PaprikaID: "doge-dogecoin", BinancePair: "DOGEUSDT", Supply: 144_600_000_000, BasePrice: 0.12},
	{ID: "polkadot", CoinCapID: "polkadot", Symbol: "dot", Name: "Polkadot", PaprikaID: "dot-polkadot", BinancePair: "DOTUSDT", Supply: 1_430_000_000, BasePrice: 6.5},
	{ID: "chainlink", CoinCapID: "chainlink", Symbol: "link", Name: "Chainlink", PaprikaID: "link-chainlink", BinancePair: "LINKUSDT", Supply: 608_000_000, BasePrice: 14},
}

var (
	byID          = map[string]*Asset{}
	bySymbol      = map[string]*Asset{}
	byPaprikaID   = map[string]*Asset{}
	byCoinCapID   = map[string]*Asset{}
	byBinancePair = map[string]*Asset{}
)

func init() {
	for i := range Catalog {
		a := &Catalog[i]
		byID[a.ID] = a
		bySymbol[a.Symbol] = a
		byPaprikaID[a.PaprikaID] = a
		byCoinCapID[a.CoinCapID] = a
		if a.BinancePair != "" {
			byBinancePair[a.BinancePair] = a
		}
	}
}

// LookupID resolves a canonical asset id.
func LookupID(id string) (Asset, bool) {
	a, ok := byID[strings.ToLower(id)]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// LookupSymbol resolves a ticker symbol ("BTC" or "btc").
func LookupSymbol(sym string) (Asset, bool) {
	a, ok := bySymbol[strings.ToLower(sym)]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// LookupPaprikaID resolves a CoinPaprika id ("btc-bitcoin").
func LookupPaprikaID(id string) (Asset, bool) {
	a, ok := byPaprikaID[strings.ToLower(id)]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// LookupCoinCapID resolves a CoinCap id ("binance-coin").
func LookupCoinCapID(id string) (Asset, bool) {
	a, ok := byCoinCapID[strings.ToLower(id)]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// LookupBinancePair resolves a Binance spot pair ("BTCUSDT").
func LookupBinancePair(pair string) (Asset, bool) {
	a, ok := byBinancePair[strings.ToUpper(pair)]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// Rank returns the catalog position of an asset id, 1-based, or 0 for
// unknown assets. Used as a fallback market-cap rank.
func Rank(id string) int {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return i + 1
		}
	}
	return 0
}

// ImageURL returns a stable icon reference for an asset. Providers
// without image data get this documented default so the canonical
// image field is never empty.
func ImageURL(id string) string {
	return "https://static.coincap.io/assets/icons/" + symbolOrID(id) + "@2x.png"
}

func symbolOrID(id string) string {
	if a, ok := byID[id]; ok {
		return a.Symbol
	}
	return id
}

// USDRates is the fixed approximate conversion table applied when a
// provider only quotes USD. Values are USD→currency multipliers;
// best-effort by design, not reconciliation-grade.
var USDRates = map[string]float64{
	"usd": 1,
	"eur": 0.92,
	"gbp": 0.79,
	"jpy": 155.0,
	"btc": 1.0 / 65000.0,
	"eth": 1.0 / 3400.0,
}

// ConvertUSD converts a USD amount into the target currency using the
// approximate table. Unknown currencies pass through unchanged.
func ConvertUSD(v float64, currency string) float64 {
	if r, ok := USDRates[strings.ToLower(currency)]; ok {
		return v * r
	}
	return v
}
