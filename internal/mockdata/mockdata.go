// Package mockdata produces schema-complete canonical payloads with no
// network access. It is the dispatcher's last resort when every real
// provider is exhausted; consumers see ordinary data with the "mock"
// source label instead of an error screen.
package mockdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// maxSafeValue clamps every generated number so downstream arithmetic
// and display never overflow.
const maxSafeValue = 1e15

// Generator holds the random-walk tuning. The zero value is unusable;
// use New.
type Generator struct {
	Volatility float64 // per-step fractional move, e.g. 0.02
	Drift      float64 // per-step bias, e.g. 0.001
}

// New returns a generator with the default walk parameters.
func New() *Generator {
	return &Generator{Volatility: 0.02, Drift: 0.0005}
}

// seedFor keeps output stable for the same query within the same hour,
// so a UI refreshing against mock data does not flicker.
func seedFor(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

func clamp(v float64) float64 {
	if v > maxSafeValue {
		return maxSafeValue
	}
	if v < 0 {
		return 0
	}
	return v
}

// basePrice anchors the walk. Catalog assets use their curated USD
// anchor; unknown ids get a stable pseudo-price from their name.
func basePrice(id string) float64 {
	if a, ok := market.LookupID(id); ok {
		return a.BasePrice
	}
	seed := seedFor("price", id)
	return 0.1 + float64(seed%100000)/1000.0
}

// MarketList returns the curated asset set as a ranked market listing.
func (g *Generator) MarketList(currency string, now time.Time) []market.Entry {
	rng := rand.New(rand.NewSource(seedFor("markets", currency, now.Format("2006010215"))))

	entries := make([]market.Entry, 0, len(market.Catalog))
	for i, a := range market.Catalog {
		jitter := 1 + (rng.Float64()-0.5)*2*g.Volatility
		price := market.ConvertUSD(a.BasePrice*jitter, currency)
		mcap := clamp(price * a.Supply)
		entries = append(entries, market.Entry{
			ID:               a.ID,
			Symbol:           a.Symbol,
			Name:             a.Name,
			Image:            market.ImageURL(a.ID),
			CurrentPrice:     clamp(price),
			MarketCap:        mcap,
			Volume24h:        clamp(mcap * 0.05),
			ChangePercent24h: (rng.Float64() - 0.5) * 10,
			MarketCapRank:    i + 1,
		})
	}
	return entries
}

// AssetDetail returns a complete detail payload for any asset id; ids
// outside the catalog still produce a schema-valid response.
func (g *Generator) AssetDetail(id, currency string, now time.Time) market.Detail {
	rng := rand.New(rand.NewSource(seedFor("detail", id, currency, now.Format("2006010215"))))

	name, symbol := id, id
	supply := 1_000_000_000.0
	if a, ok := market.LookupID(id); ok {
		name, symbol, supply = a.Name, a.Symbol, a.Supply
	}

	priceUSD := basePrice(id) * (1 + (rng.Float64()-0.5)*2*g.Volatility)
	mcapUSD := clamp(priceUSD * supply)
	volUSD := clamp(mcapUSD * 0.05)
	change24 := (rng.Float64() - 0.5) * 10

	prices := make(map[string]float64, len(market.SupportedCurrencies))
	caps := make(map[string]float64, len(market.SupportedCurrencies))
	vols := make(map[string]float64, len(market.SupportedCurrencies))
	for _, cur := range market.SupportedCurrencies {
		prices[cur] = clamp(market.ConvertUSD(priceUSD, cur))
		caps[cur] = clamp(market.ConvertUSD(mcapUSD, cur))
		vols[cur] = clamp(market.ConvertUSD(volUSD, cur))
	}

	price := clamp(market.ConvertUSD(priceUSD, currency))
	return market.Detail{
		Entry: market.Entry{
			ID:               id,
			Symbol:           symbol,
			Name:             name,
			Image:            market.ImageURL(id),
			CurrentPrice:     price,
			MarketCap:        clamp(market.ConvertUSD(mcapUSD, currency)),
			Volume24h:        clamp(market.ConvertUSD(volUSD, currency)),
			ChangePercent24h: change24,
			MarketCapRank:    rankOrDefault(id),
		},
		Prices:     prices,
		MarketCaps: caps,
		Volumes:    vols,
		Changes: market.ChangeSet{
			H24:  change24,
			D7:   change24 * 2.1,
			D30:  change24 * 3.5,
			D60:  change24 * 4.2,
			D200: change24 * 5.5,
			Y1:   change24 * 6.8,
		},
		Supply: market.Supply{Circulating: supply, Total: supply, Max: supply * 1.1},
		ATH: market.Extreme{
			Price:         clamp(price * 1.8),
			Date:          now.AddDate(0, -6, 0),
			ChangePercent: -44.4,
		},
		ATL: market.Extreme{
			Price:         clamp(price * 0.1),
			Date:          now.AddDate(-4, 0, 0),
			ChangePercent: 900,
		},
		Description: "Demo data for " + name + ". Live sources are temporarily unavailable.",
		Links:       market.NormalizeLinks(market.Links{}),
	}
}

// AssetHistory returns a bounded random-walk series: one sample per
// hour up to 7 days, one per day beyond, strictly ascending.
func (g *Generator) AssetHistory(id, currency string, days int, now time.Time) market.ChartSeries {
	if days < 1 {
		days = 1
	}
	rng := rand.New(rand.NewSource(seedFor("history", id, currency, now.Format("2006010215"), strings.Repeat("d", days%97))))

	step := 24 * time.Hour
	points := days
	if days <= 7 {
		step = time.Hour
		points = days * 24
	}

	supply := 1_000_000_000.0
	if a, ok := market.LookupID(id); ok {
		supply = a.Supply
	}

	price := market.ConvertUSD(basePrice(id), currency)
	start := now.Add(-time.Duration(points) * step)

	series := market.ChartSeries{
		Prices:     make([]market.Point, 0, points),
		MarketCaps: make([]market.Point, 0, points),
		Volumes:    make([]market.Point, 0, points),
	}
	for i := 0; i < points; i++ {
		move := g.Drift + (rng.Float64()-0.5)*2*g.Volatility
		price = price * (1 + move)
		price = math.Max(price, 1e-9)
		price = clamp(price)

		ts := start.Add(time.Duration(i) * step).UnixMilli()
		mcap := clamp(price * supply)
		series.Prices = append(series.Prices, market.Point{Timestamp: ts, Value: price})
		series.MarketCaps = append(series.MarketCaps, market.Point{Timestamp: ts, Value: mcap})
		series.Volumes = append(series.Volumes, market.Point{Timestamp: ts, Value: clamp(mcap * 0.05)})
	}
	return series
}

func rankOrDefault(id string) int {
	if r := market.Rank(id); r > 0 {
		return r
	}
	return len(market.Catalog) + 1
}
