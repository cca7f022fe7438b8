package normalize

import (
	"testing"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

const binanceTickersFixture = `[
  {"symbol":"ETHUSDT","lastPrice":"3400.50","priceChangePercent":"-1.20","quoteVolume":"14500000000"},
  {"symbol":"BTCUSDT","lastPrice":"65000.10","priceChangePercent":"2.50","quoteVolume":"29000000000"},
  {"symbol":"SHIBDOGE","lastPrice":"0.001","priceChangePercent":"0.0","quoteVolume":"1"},
  {"symbol":"SOLUSDT","lastPrice":"oops","priceChangePercent":"1.0","quoteVolume":"2"}
]`

func TestBinanceMarkets(t *testing.T) {
	got, err := Normalize("binance", market.Query{Type: market.QueryMarketList, Currency: "usd"}, []byte(binanceTickersFixture))
	if err != nil {
		t.Fatal(err)
	}
	entries := got.([]market.Entry)

	// Non-catalog pairs and unparsable rows are dropped
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Catalog rank sorts bitcoin first
	if entries[0].ID != "bitcoin" || entries[1].ID != "ethereum" {
		t.Errorf("order = %s, %s", entries[0].ID, entries[1].ID)
	}

	// Market cap derived from catalog supply
	wantMcap := 65000.10 * 19_700_000
	if entries[0].MarketCap != wantMcap {
		t.Errorf("mcap = %v, want %v", entries[0].MarketCap, wantMcap)
	}
	if entries[0].MarketCapRank != 1 || entries[1].MarketCapRank != 2 {
		t.Errorf("ranks = %d, %d", entries[0].MarketCapRank, entries[1].MarketCapRank)
	}
}

func TestBinanceMarketsNoCatalogPairs(t *testing.T) {
	_, err := Normalize("binance", market.Query{Type: market.QueryMarketList, Currency: "usd"},
		[]byte(`[{"symbol":"ABCXYZ","lastPrice":"1","priceChangePercent":"0","quoteVolume":"1"}]`))
	if err == nil {
		t.Error("list with no catalog pairs accepted")
	}
}

func TestBinanceDetailUnsupported(t *testing.T) {
	_, err := Normalize("binance", market.Query{Type: market.QueryAssetDetail, Currency: "usd", AssetID: "bitcoin"}, []byte(`{}`))
	if err == nil {
		t.Error("binance detail query accepted")
	}
}

const binanceKlinesFixture = `[
  [1700000000000,"64000","64100","63900","64050","450.5",1700003599999,"28850000000",1000,"225","14400000000","0"],
  [1700003600000,"64050","64600","64000","64500","460.1",1700007199999,"29600000000",1100,"230","14800000000","0"],
  [1700007200000,"64500"],
  [1700010800000,"64500","64900","64400","64800","440.0",1700014399999,"28500000000",1050,"220","14200000000","0"]
]`

func TestBinanceHistory(t *testing.T) {
	got, err := Normalize("binance", market.Query{Type: market.QueryAssetHistory, Currency: "usd", AssetID: "bitcoin", Days: 1}, []byte(binanceKlinesFixture))
	if err != nil {
		t.Fatal(err)
	}
	s := got.(market.ChartSeries)
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	// The truncated kline is dropped
	if len(s.Prices) != 3 {
		t.Fatalf("points = %d, want 3", len(s.Prices))
	}
	if s.Prices[0].Value != 64050 {
		t.Errorf("close price = %v, want 64050", s.Prices[0].Value)
	}
	if s.Volumes[0].Value != 28850000000 {
		t.Errorf("quote volume = %v", s.Volumes[0].Value)
	}
	wantMcap := 64050.0 * 19_700_000
	if s.MarketCaps[0].Value != wantMcap {
		t.Errorf("mcap = %v, want %v", s.MarketCaps[0].Value, wantMcap)
	}
}
