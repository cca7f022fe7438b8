package market

import (
	"testing"
	"time"
)

func TestQueryKey(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"market list", Query{Type: QueryMarketList, Currency: "usd"}, "markets:usd"},
		{"detail", Query{Type: QueryAssetDetail, Currency: "eur", AssetID: "bitcoin"}, "detail:bitcoin:eur"},
		{"history", Query{Type: QueryAssetHistory, Currency: "usd", AssetID: "ethereum", Days: 30}, "history:ethereum:usd:30"},
		{"history other range", Query{Type: QueryAssetHistory, Currency: "usd", AssetID: "ethereum", Days: 7}, "history:ethereum:usd:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryTypeTTL(t *testing.T) {
	if got := QueryMarketList.TTL(); got != 10*time.Minute {
		t.Errorf("market list TTL = %v, want 10m", got)
	}
	if got := QueryAssetDetail.TTL(); got != 15*time.Minute {
		t.Errorf("detail TTL = %v, want 15m", got)
	}
	if got := QueryAssetHistory.TTL(); got != 20*time.Minute {
		t.Errorf("history TTL = %v, want 20m", got)
	}
}

func TestChartSeriesValidate(t *testing.T) {
	ok := ChartSeries{
		Prices:     []Point{{1000, 1}, {2000, 2}},
		MarketCaps: []Point{{1000, 10}, {2000, 20}},
		Volumes:    []Point{{1000, 100}, {2000, 200}},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid series: %v", err)
	}

	mismatch := ChartSeries{
		Prices:     []Point{{1000, 1}},
		MarketCaps: []Point{{1000, 10}, {2000, 20}},
		Volumes:    []Point{{1000, 100}},
	}
	if err := mismatch.Validate(); err == nil {
		t.Error("length mismatch not rejected")
	}

	unordered := ChartSeries{
		Prices:     []Point{{2000, 1}, {1000, 2}},
		MarketCaps: []Point{{2000, 10}, {1000, 20}},
		Volumes:    []Point{{2000, 100}, {1000, 200}},
	}
	if err := unordered.Validate(); err == nil {
		t.Error("descending timestamps not rejected")
	}

	duplicate := ChartSeries{
		Prices:     []Point{{1000, 1}, {1000, 2}},
		MarketCaps: []Point{{1000, 10}, {1000, 20}},
		Volumes:    []Point{{1000, 100}, {1000, 200}},
	}
	if err := duplicate.Validate(); err == nil {
		t.Error("duplicate timestamps not rejected")
	}
}

func TestNormalizeLinks(t *testing.T) {
	l := NormalizeLinks(Links{Homepage: []string{"https://bitcoin.org"}})
	if l.Homepage == nil || l.Explorers == nil || l.Forums == nil || l.Repos == nil {
		t.Error("NormalizeLinks left a nil slice")
	}
	if len(l.Homepage) != 1 {
		t.Errorf("Homepage = %v, want preserved", l.Homepage)
	}
}

func TestCurrencySupported(t *testing.T) {
	for _, c := range []string{"usd", "eur", "gbp", "jpy", "btc", "eth", "USD"} {
		if !CurrencySupported(c) {
			t.Errorf("CurrencySupported(%q) = false", c)
		}
	}
	for _, c := range []string{"", "chf", "xyz"} {
		if CurrencySupported(c) {
			t.Errorf("CurrencySupported(%q) = true", c)
		}
	}
}

func TestConvertUSD(t *testing.T) {
	if got := ConvertUSD(100, "usd"); got != 100 {
		t.Errorf("usd passthrough = %v", got)
	}
	if got := ConvertUSD(100, "eur"); got != 92 {
		t.Errorf("eur = %v, want 92", got)
	}
	// Unknown currency passes through
	if got := ConvertUSD(100, "chf"); got != 100 {
		t.Errorf("unknown currency = %v, want 100", got)
	}
}

func TestCatalogLookups(t *testing.T) {
	a, ok := LookupID("bitcoin")
	if !ok || a.Symbol != "btc" {
		t.Fatalf("LookupID(bitcoin) = %+v, %v", a, ok)
	}
	if a, ok := LookupSymbol("ETH"); !ok || a.ID != "ethereum" {
		t.Errorf("LookupSymbol(ETH) = %+v, %v", a, ok)
	}
	if a, ok := LookupPaprikaID("btc-bitcoin"); !ok || a.ID != "bitcoin" {
		t.Errorf("LookupPaprikaID = %+v, %v", a, ok)
	}
	if a, ok := LookupCoinCapID("binance-coin"); !ok || a.ID != "binancecoin" {
		t.Errorf("LookupCoinCapID(binance-coin) = %+v, %v", a, ok)
	}
	if a, ok := LookupCoinCapID("xrp"); !ok || a.ID != "ripple" {
		t.Errorf("LookupCoinCapID(xrp) = %+v, %v", a, ok)
	}
	if a, ok := LookupBinancePair("btcusdt"); !ok || a.ID != "bitcoin" {
		t.Errorf("LookupBinancePair = %+v, %v", a, ok)
	}
	if _, ok := LookupID("notacoin"); ok {
		t.Error("LookupID(notacoin) found something")
	}
}

func TestRank(t *testing.T) {
	if got := Rank("bitcoin"); got != 1 {
		t.Errorf("Rank(bitcoin) = %d, want 1", got)
	}
	if got := Rank("ethereum"); got != 2 {
		t.Errorf("Rank(ethereum) = %d, want 2", got)
	}
	if got := Rank("unknown"); got != 0 {
		t.Errorf("Rank(unknown) = %d, want 0", got)
	}
}
