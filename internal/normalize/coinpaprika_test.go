package normalize

import (
	"testing"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

const paprikaTickersFixture = `[
  {"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,
   "circulating_supply":19700000,"total_supply":19700000,"max_supply":21000000,
   "quotes":{"USD":{"price":65000,"volume_24h":29000000000,"market_cap":1280000000000,
     "percent_change_24h":2.5,"percent_change_7d":5.5,"percent_change_30d":11.0,
     "percent_change_1y":118.0,"ath_price":73750,
     "ath_date":"2024-03-14T07:10:36Z","percent_from_price_ath":-11.9}}},
  {"id":"weird-coin","name":"Weird","symbol":"WRD","rank":900,"quotes":{}}
]`

func TestPaprikaMarkets(t *testing.T) {
	got, err := Normalize("coinpaprika", market.Query{Type: market.QueryMarketList, Currency: "usd"}, []byte(paprikaTickersFixture))
	if err != nil {
		t.Fatal(err)
	}
	entries := got.([]market.Entry)

	// Tickers without a USD quote are dropped
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	// Paprika's "btc-bitcoin" resolves to the canonical id
	if entries[0].ID != "bitcoin" || entries[0].Symbol != "btc" {
		t.Errorf("identity not translated: %+v", entries[0])
	}
	if entries[0].CurrentPrice != 65000 || entries[0].MarketCapRank != 1 {
		t.Errorf("entry = %+v", entries[0])
	}
}

const paprikaTickerFixture = `{
  "id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,
  "circulating_supply":19700000,"total_supply":19700000,"max_supply":21000000,
  "quotes":{"USD":{"price":65000,"volume_24h":29000000000,"market_cap":1280000000000,
    "percent_change_24h":2.5,"percent_change_7d":5.5,"percent_change_30d":11.0,
    "percent_change_1y":118.0,"ath_price":73750,
    "ath_date":"2024-03-14T07:10:36Z","percent_from_price_ath":-11.9}}
}`

func TestPaprikaDetail(t *testing.T) {
	got, err := Normalize("coinpaprika", market.Query{Type: market.QueryAssetDetail, Currency: "usd", AssetID: "bitcoin"}, []byte(paprikaTickerFixture))
	if err != nil {
		t.Fatal(err)
	}
	d := got.(market.Detail)

	if d.ID != "bitcoin" || d.CurrentPrice != 65000 {
		t.Errorf("entry = %+v", d.Entry)
	}
	// Real horizons pass through, missing ones interpolated
	if d.Changes.D7 != 5.5 || d.Changes.D30 != 11.0 || d.Changes.Y1 != 118.0 {
		t.Errorf("changes = %+v", d.Changes)
	}
	if d.Changes.D60 != 11.0*1.4 || d.Changes.D200 != 118.0*0.7 {
		t.Errorf("approximated changes = %+v", d.Changes)
	}
	if d.ATH.Price != 73750 || d.ATH.ChangePercent != -11.9 || d.ATH.Date.IsZero() {
		t.Errorf("ath = %+v", d.ATH)
	}
	// No ATL: defaults to current price
	if d.ATL.Price != 65000 {
		t.Errorf("atl = %+v", d.ATL)
	}
	if d.Supply.Max != 21000000 {
		t.Errorf("supply = %+v", d.Supply)
	}
}

func TestPaprikaDetailMissingUSDQuote(t *testing.T) {
	_, err := Normalize("coinpaprika", market.Query{Type: market.QueryAssetDetail, Currency: "usd"},
		[]byte(`{"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,"quotes":{}}`))
	if err == nil {
		t.Error("ticker without USD quote accepted")
	}
}

const paprikaHistoryFixture = `[
  {"timestamp":"2026-08-22T00:00:00Z","price":64000,"volume_24h":28000000000,"market_cap":1260000000000},
  {"timestamp":"2026-08-23T00:00:00Z","price":64500,"volume_24h":29000000000,"market_cap":1270000000000},
  {"timestamp":"not-a-date","price":1,"volume_24h":1,"market_cap":1},
  {"timestamp":"2026-08-24T00:00:00Z","price":65000,"volume_24h":30000000000,"market_cap":1280000000000}
]`

func TestPaprikaHistory(t *testing.T) {
	got, err := Normalize("coinpaprika", market.Query{Type: market.QueryAssetHistory, Currency: "usd", AssetID: "bitcoin", Days: 3}, []byte(paprikaHistoryFixture))
	if err != nil {
		t.Fatal(err)
	}
	s := got.(market.ChartSeries)
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(s.Prices) != 3 {
		t.Fatalf("points = %d, want 3 (bad timestamp dropped)", len(s.Prices))
	}
	if s.Prices[2].Value != 65000 || s.Volumes[2].Value != 30000000000 {
		t.Errorf("last sample = %+v / %+v", s.Prices[2], s.Volumes[2])
	}
}
