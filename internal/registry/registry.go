package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// RatePolicy is a sliding-window request budget. Zero value means the
// provider is unthrottled.
type RatePolicy struct {
	MaxRequests int
	Window      time.Duration
}

// Enabled reports whether the policy constrains anything.
func (p RatePolicy) Enabled() bool { return p.MaxRequests > 0 && p.Window > 0 }

// Provider is the immutable descriptor of one upstream data source.
// Built once at startup, never mutated afterwards; all mutable state
// lives in the availability tracker and the rate limiter.
type Provider struct {
	Name      string
	BaseURL   string
	Priority  int // lower tried first
	Headers   map[string]string
	Rate      RatePolicy
	Endpoints map[market.QueryType]string // path templates, see URL
}

// Supports reports whether the provider has an endpoint for the query
// type. Providers without one are excluded from dispatch entirely.
func (p Provider) Supports(t market.QueryType) bool {
	_, ok := p.Endpoints[t]
	return ok
}

// URL expands the endpoint template for a query. Placeholders:
//
//	{currency}      lowercase target currency
//	{currency_up}   uppercase target currency
//	{id}            canonical asset id
//	{paprika_id}    CoinPaprika asset id
//	{coincap_id}    CoinCap asset id
//	{binance_pair}  Binance USDT spot pair
//	{symbol_up}     uppercase ticker symbol
//	{days}          history range in days
//	{start_ms}      now - days, Unix milliseconds
//	{end_ms}        now, Unix milliseconds
//	{start_date}    now - days, YYYY-MM-DD
//	{interval_cc}   CoinCap interval (h1 ≤ 7d, d1 beyond)
//	{interval_cp}   CoinPaprika interval (1h for 1d, 1d beyond)
//
// Identity placeholders resolve through the asset catalog; an unknown
// asset id is an error so the dispatcher can skip the provider before
// spending a network attempt.
func (p Provider) URL(q market.Query, now time.Time) (string, error) {
	tmpl, ok := p.Endpoints[q.Type]
	if !ok {
		return "", fmt.Errorf("provider %s: no endpoint for %s", p.Name, q.Type)
	}

	pairs := []string{
		"{currency}", strings.ToLower(q.Currency),
		"{currency_up}", strings.ToUpper(q.Currency),
		"{days}", strconv.Itoa(q.Days),
	}
	if q.AssetID != "" {
		asset, ok := market.LookupID(q.AssetID)
		if !ok {
			return "", fmt.Errorf("provider %s: unknown asset %q", p.Name, q.AssetID)
		}
		if strings.Contains(tmpl, "{binance_pair}") && asset.BinancePair == "" {
			return "", fmt.Errorf("provider %s: %s has no trading pair", p.Name, q.AssetID)
		}
		pairs = append(pairs,
			"{id}", asset.ID,
			"{paprika_id}", asset.PaprikaID,
			"{coincap_id}", asset.CoinCapID,
			"{binance_pair}", asset.BinancePair,
			"{symbol_up}", strings.ToUpper(asset.Symbol),
		)
	}
	if q.Type == market.QueryAssetHistory {
		start := now.AddDate(0, 0, -q.Days)
		ccInterval, cpInterval := "d1", "1d"
		if q.Days <= 7 {
			ccInterval = "h1"
		}
		if q.Days <= 1 {
			cpInterval = "1h"
		}
		pairs = append(pairs,
			"{start_ms}", strconv.FormatInt(start.UnixMilli(), 10),
			"{end_ms}", strconv.FormatInt(now.UnixMilli(), 10),
			"{start_date}", start.UTC().Format("2006-01-02"),
			"{interval_cc}", ccInterval,
			"{interval_cp}", cpInterval,
		)
	}
	return p.BaseURL + strings.NewReplacer(pairs...).Replace(tmpl), nil
}

// Registry holds the static provider set in declaration order.
type Registry struct {
	providers []Provider
}

// New builds a registry. Declaration order is preserved and acts as
// the tie-break between equal priorities.
func New(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// All returns every provider in declaration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get looks a provider up by name.
func (r *Registry) Get(name string) (Provider, bool) {
	for _, p := range r.providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Names returns provider names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// Candidates returns the providers configured for the query type,
// sorted ascending by priority. The sort is stable, so equal
// priorities fall back to declaration order.
func (r *Registry) Candidates(t market.QueryType) []Provider {
	var out []Provider
	for _, p := range r.providers {
		if p.Supports(t) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
