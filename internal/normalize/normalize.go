// Package normalize converts raw provider payloads into the canonical
// market schemas. There is one decode path per (provider, query type)
// pair; each decodes into a typed response struct for that provider
// and maps field names, units, and asset identities onto the canonical
// shape. Fields a provider cannot supply are filled with documented
// defaults, never left absent.
package normalize

import (
	"fmt"
	"sort"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// Error marks a payload the normalizer could not map: malformed JSON
// or a missing required field. Dispatch treats it like a provider
// failure; the type exists so diagnostics can tell the two apart.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func transformErr(provider, format string, args ...any) error {
	return &Error{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Multipliers used to approximate change horizons a provider does not
// report, derived from its 24h change. Documented approximation, not a
// computation the numbers justify.
const (
	approx7d   = 2.1
	approx30d  = 3.5
	approx60d  = 4.2
	approx200d = 5.5
	approx1y   = 6.8
)

func approximateChanges(h24 float64) market.ChangeSet {
	return market.ChangeSet{
		H24:  h24,
		D7:   h24 * approx7d,
		D30:  h24 * approx30d,
		D60:  h24 * approx60d,
		D200: h24 * approx200d,
		Y1:   h24 * approx1y,
	}
}

// Normalize selects the decode path for a provider and query type. The
// returned value is one of []market.Entry, market.Detail, or
// market.ChartSeries.
func Normalize(provider string, q market.Query, body []byte) (any, error) {
	switch provider {
	case "coingecko":
		return normalizeCoinGecko(q, body)
	case "coincap":
		return normalizeCoinCap(q, body)
	case "coinpaprika":
		return normalizeCoinPaprika(q, body)
	case "binance":
		return normalizeBinance(q, body)
	default:
		return nil, transformErr(provider, "no normalizer registered")
	}
}

// usdQuoteMaps expands a USD-quoted price/cap/volume triple into the
// per-currency maps of the detail schema using the approximate
// conversion table.
func usdQuoteMaps(priceUSD, capUSD, volUSD float64) (prices, caps, vols map[string]float64) {
	prices = make(map[string]float64, len(market.SupportedCurrencies))
	caps = make(map[string]float64, len(market.SupportedCurrencies))
	vols = make(map[string]float64, len(market.SupportedCurrencies))
	for _, cur := range market.SupportedCurrencies {
		prices[cur] = market.ConvertUSD(priceUSD, cur)
		caps[cur] = market.ConvertUSD(capUSD, cur)
		vols[cur] = market.ConvertUSD(volUSD, cur)
	}
	return prices, caps, vols
}

// buildSeries assembles a chart series from raw samples, enforcing the
// schema invariants: parallel lengths, strictly ascending timestamps.
type sample struct {
	ts     int64
	price  float64
	mcap   float64
	volume float64
}

func buildSeries(samples []sample) market.ChartSeries {
	sort.Slice(samples, func(i, j int) bool { return samples[i].ts < samples[j].ts })

	series := market.ChartSeries{
		Prices:     make([]market.Point, 0, len(samples)),
		MarketCaps: make([]market.Point, 0, len(samples)),
		Volumes:    make([]market.Point, 0, len(samples)),
	}
	var lastTS int64 = -1
	for _, s := range samples {
		if s.ts <= lastTS {
			continue // duplicate timestamp, keep first
		}
		lastTS = s.ts
		series.Prices = append(series.Prices, market.Point{Timestamp: s.ts, Value: s.price})
		series.MarketCaps = append(series.MarketCaps, market.Point{Timestamp: s.ts, Value: s.mcap})
		series.Volumes = append(series.Volumes, market.Point{Timestamp: s.ts, Value: s.volume})
	}
	return series
}

// sortEntries orders a market list by rank, unranked entries last.
func sortEntries(entries []market.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].MarketCapRank, entries[j].MarketCapRank
		if ri == 0 {
			return false
		}
		if rj == 0 {
			return true
		}
		return ri < rj
	})
}
