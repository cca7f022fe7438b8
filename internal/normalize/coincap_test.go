package normalize

import (
	"math"
	"testing"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

const coincapAssetsFixture = `{"data":[
  {"id":"bitcoin","rank":"1","symbol":"BTC","name":"Bitcoin","supply":"19700000",
   "maxSupply":"21000000","marketCapUsd":"1280500000000.12","volumeUsd24Hr":"29500000000.5",
   "priceUsd":"65000.25","changePercent24Hr":"2.41"},
  {"id":"binance-coin","rank":"4","symbol":"BNB","name":"BNB","supply":"147500000",
   "maxSupply":"","marketCapUsd":"85550000000","volumeUsd24Hr":"1200000000",
   "priceUsd":"580.0","changePercent24Hr":"-0.8"},
  {"id":"broken","rank":"5","symbol":"BAD","name":"Broken","priceUsd":"not-a-number"}
]}`

func TestCoinCapMarkets(t *testing.T) {
	got, err := Normalize("coincap", market.Query{Type: market.QueryMarketList, Currency: "usd"}, []byte(coincapAssetsFixture))
	if err != nil {
		t.Fatal(err)
	}
	entries := got.([]market.Entry)

	// The unparsable row is dropped, not fatal
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "bitcoin" || entries[0].CurrentPrice != 65000.25 {
		t.Errorf("bitcoin = %+v", entries[0])
	}
	// CoinCap's "binance-coin" id resolves to the canonical id
	if entries[1].ID != "binancecoin" || entries[1].Symbol != "bnb" {
		t.Errorf("bnb identity not translated: %+v", entries[1])
	}
	if entries[1].ChangePercent24h != -0.8 {
		t.Errorf("bnb change = %v", entries[1].ChangePercent24h)
	}
}

func TestCoinCapMarketsCurrencyConversion(t *testing.T) {
	got, err := Normalize("coincap", market.Query{Type: market.QueryMarketList, Currency: "eur"}, []byte(coincapAssetsFixture))
	if err != nil {
		t.Fatal(err)
	}
	entries := got.([]market.Entry)
	want := 65000.25 * 0.92
	if math.Abs(entries[0].CurrentPrice-want) > 1e-9 {
		t.Errorf("eur price = %v, want %v", entries[0].CurrentPrice, want)
	}
}

const coincapAssetFixture = `{"data":
  {"id":"bitcoin","rank":"1","symbol":"BTC","name":"Bitcoin","supply":"19700000",
   "maxSupply":"21000000","marketCapUsd":"1280500000000","volumeUsd24Hr":"29500000000",
   "priceUsd":"65000","changePercent24Hr":"2.0"}
}`

func TestCoinCapDetail(t *testing.T) {
	got, err := Normalize("coincap", market.Query{Type: market.QueryAssetDetail, Currency: "usd", AssetID: "bitcoin"}, []byte(coincapAssetFixture))
	if err != nil {
		t.Fatal(err)
	}
	d := got.(market.Detail)

	if d.ID != "bitcoin" || d.CurrentPrice != 65000 {
		t.Errorf("entry = %+v", d.Entry)
	}
	// Longer horizons approximated from the 24h change
	if d.Changes.D7 != 2.0*2.1 || d.Changes.D200 != 2.0*5.5 {
		t.Errorf("changes = %+v", d.Changes)
	}
	if d.Supply.Circulating != 19700000 || d.Supply.Max != 21000000 {
		t.Errorf("supply = %+v", d.Supply)
	}
	// No ATH/ATL from CoinCap: defaults to current price
	if d.ATH.Price != 65000 || d.ATL.Price != 65000 {
		t.Errorf("extremes = %+v / %+v", d.ATH, d.ATL)
	}
	for _, cur := range market.SupportedCurrencies {
		if _, ok := d.Prices[cur]; !ok {
			t.Errorf("prices missing %s", cur)
		}
	}
	if d.Links.Homepage == nil {
		t.Error("nil links")
	}
}

func TestCoinCapDetailMissingData(t *testing.T) {
	if _, err := Normalize("coincap", market.Query{Type: market.QueryAssetDetail, Currency: "usd"}, []byte(`{"data":null}`)); err == nil {
		t.Error("null data accepted")
	}
}

const coincapHistoryFixture = `{"data":[
  {"priceUsd":"64000.0","time":1700000000000},
  {"priceUsd":"64500.0","time":1700003600000},
  {"priceUsd":"garbage","time":1700007200000},
  {"priceUsd":"64800.0","time":1700010800000}
]}`

func TestCoinCapHistory(t *testing.T) {
	got, err := Normalize("coincap", market.Query{Type: market.QueryAssetHistory, Currency: "usd", AssetID: "bitcoin", Days: 1}, []byte(coincapHistoryFixture))
	if err != nil {
		t.Fatal(err)
	}
	s := got.(market.ChartSeries)
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(s.Prices) != 3 {
		t.Fatalf("points = %d, want 3 (bad row dropped)", len(s.Prices))
	}

	// Derived series: mcap = price * catalog supply, volume = mcap * 5%
	wantMcap := 64000.0 * 19_700_000
	if s.MarketCaps[0].Value != wantMcap {
		t.Errorf("mcap = %v, want %v", s.MarketCaps[0].Value, wantMcap)
	}
	if s.Volumes[0].Value != wantMcap*0.05 {
		t.Errorf("volume = %v, want %v", s.Volumes[0].Value, wantMcap*0.05)
	}
}
