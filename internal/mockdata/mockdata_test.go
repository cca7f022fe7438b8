package mockdata

import (
	"testing"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

var testNow = time.Date(2026, 8, 24, 12, 30, 0, 0, time.UTC)

func TestMarketListShape(t *testing.T) {
	g := New()
	entries := g.MarketList("usd", testNow)

	if len(entries) != len(market.Catalog) {
		t.Fatalf("entries = %d, want %d", len(entries), len(market.Catalog))
	}
	for i, e := range entries {
		if e.ID == "" || e.Symbol == "" || e.Name == "" || e.Image == "" {
			t.Errorf("entry %d has empty identity fields: %+v", i, e)
		}
		if e.MarketCapRank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, e.MarketCapRank, i+1)
		}
		if e.CurrentPrice <= 0 || e.CurrentPrice > 1e15 {
			t.Errorf("entry %d price out of bounds: %v", i, e.CurrentPrice)
		}
		if e.MarketCap > 1e15 || e.Volume24h > 1e15 {
			t.Errorf("entry %d cap/volume exceed the clamp: %+v", i, e)
		}
	}
}

func TestMarketListStableWithinHour(t *testing.T) {
	g := New()
	a := g.MarketList("usd", testNow)
	b := g.MarketList("usd", testNow.Add(10*time.Minute))
	for i := range a {
		if a[i].CurrentPrice != b[i].CurrentPrice {
			t.Fatalf("price drifted within the hour at index %d", i)
		}
	}

	c := g.MarketList("usd", testNow.Add(time.Hour))
	same := true
	for i := range a {
		if a[i].CurrentPrice != c[i].CurrentPrice {
			same = false
			break
		}
	}
	if same {
		t.Error("prices identical across hours, seed not rotating")
	}
}

func TestAssetDetailSchemaComplete(t *testing.T) {
	g := New()
	for _, id := range []string{"bitcoin", "some-unknown-token"} {
		d := g.AssetDetail(id, "eur", testNow)

		if d.ID != id || d.Name == "" || d.Symbol == "" {
			t.Errorf("%s: identity incomplete: %+v", id, d.Entry)
		}
		if d.CurrentPrice <= 0 {
			t.Errorf("%s: price = %v", id, d.CurrentPrice)
		}
		for _, cur := range market.SupportedCurrencies {
			if _, ok := d.Prices[cur]; !ok {
				t.Errorf("%s: prices missing %s", id, cur)
			}
			if _, ok := d.MarketCaps[cur]; !ok {
				t.Errorf("%s: market caps missing %s", id, cur)
			}
			if _, ok := d.Volumes[cur]; !ok {
				t.Errorf("%s: volumes missing %s", id, cur)
			}
		}
		if d.ATH.Price <= d.ATL.Price {
			t.Errorf("%s: ATH %v not above ATL %v", id, d.ATH.Price, d.ATL.Price)
		}
		if d.Supply.Circulating <= 0 {
			t.Errorf("%s: supply = %+v", id, d.Supply)
		}
		if d.Description == "" {
			t.Errorf("%s: empty description", id)
		}
		if d.Links.Homepage == nil || d.Links.Explorers == nil {
			t.Errorf("%s: nil link slices", id)
		}
	}
}

func TestAssetHistoryInvariants(t *testing.T) {
	g := New()
	tests := []struct {
		days   int
		points int
	}{
		{1, 24},
		{7, 168},
		{30, 30},
		{365, 365},
	}
	for _, tt := range tests {
		series := g.AssetHistory("bitcoin", "usd", tt.days, testNow)
		if err := series.Validate(); err != nil {
			t.Errorf("days=%d: %v", tt.days, err)
		}
		if len(series.Prices) != tt.points {
			t.Errorf("days=%d: points = %d, want %d", tt.days, len(series.Prices), tt.points)
		}
		for i, p := range series.Prices {
			if p.Value <= 0 || p.Value > 1e15 {
				t.Errorf("days=%d: price[%d] out of bounds: %v", tt.days, i, p.Value)
			}
		}
	}
}

func TestAssetHistoryClampsDays(t *testing.T) {
	g := New()
	series := g.AssetHistory("ethereum", "usd", 0, testNow)
	if err := series.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(series.Prices) != 24 {
		t.Errorf("points = %d, want 24 for clamped 1-day range", len(series.Prices))
	}
}
