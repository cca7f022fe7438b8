package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// CoinCap quotes everything in USD as decimal strings and reports only
// a 24h change, so the transform converts currency through the fixed
// table and approximates the longer horizons. Its history endpoint
// carries price only; market cap and volume are derived from price via
// the catalog supply and a fixed volume ratio (documented
// approximation).

const coincapVolumeRatio = 0.05 // derived volume = mcap * ratio

type coincapAsset struct {
	ID               string `json:"id"`
	Rank             string `json:"rank"`
	Symbol           string `json:"symbol"`
	Name             string `json:"name"`
	Supply           string `json:"supply"`
	MaxSupply        string `json:"maxSupply"`
	MarketCapUSD     string `json:"marketCapUsd"`
	VolumeUSD24h     string `json:"volumeUsd24Hr"`
	PriceUSD         string `json:"priceUsd"`
	ChangePercent24h string `json:"changePercent24Hr"`
}

type coincapAssetsResp struct {
	Data []coincapAsset `json:"data"`
}

type coincapAssetResp struct {
	Data *coincapAsset `json:"data"`
}

type coincapHistoryResp struct {
	Data []struct {
		PriceUSD string `json:"priceUsd"`
		Time     int64  `json:"time"`
	} `json:"data"`
}

func normalizeCoinCap(q market.Query, body []byte) (any, error) {
	switch q.Type {
	case market.QueryMarketList:
		return coincapMarkets(q, body)
	case market.QueryAssetDetail:
		return coincapDetail(q, body)
	default:
		return coincapHistory(q, body)
	}
}

func coincapEntry(a coincapAsset, currency string) (market.Entry, error) {
	price, err := strconv.ParseFloat(a.PriceUSD, 64)
	if err != nil {
		return market.Entry{}, transformErr("coincap", "parse priceUsd for %s: %w", a.ID, err)
	}
	mcap, _ := strconv.ParseFloat(a.MarketCapUSD, 64)
	volume, _ := strconv.ParseFloat(a.VolumeUSD24h, 64)
	change, _ := strconv.ParseFloat(a.ChangePercent24h, 64)
	rank, _ := strconv.Atoi(a.Rank)

	id, symbol, name := a.ID, a.Symbol, a.Name
	if asset, ok := market.LookupCoinCapID(a.ID); ok {
		id, symbol, name = asset.ID, asset.Symbol, asset.Name
	}
	return market.Entry{
		ID:               id,
		Symbol:           symbol,
		Name:             name,
		Image:            market.ImageURL(id),
		CurrentPrice:     market.ConvertUSD(price, currency),
		MarketCap:        market.ConvertUSD(mcap, currency),
		Volume24h:        market.ConvertUSD(volume, currency),
		ChangePercent24h: change,
		MarketCapRank:    rank,
	}, nil
}

func coincapMarkets(q market.Query, body []byte) ([]market.Entry, error) {
	var resp coincapAssetsResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, transformErr("coincap", "decode assets: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, transformErr("coincap", "empty asset list")
	}

	entries := make([]market.Entry, 0, len(resp.Data))
	for _, a := range resp.Data {
		e, err := coincapEntry(a, q.Currency)
		if err != nil {
			continue // one bad row does not fail the list
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, transformErr("coincap", "no usable asset rows")
	}
	sortEntries(entries)
	return entries, nil
}

func coincapDetail(q market.Query, body []byte) (market.Detail, error) {
	var resp coincapAssetResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return market.Detail{}, transformErr("coincap", "decode asset: %w", err)
	}
	if resp.Data == nil {
		return market.Detail{}, transformErr("coincap", "missing asset data")
	}
	a := *resp.Data

	entry, err := coincapEntry(a, q.Currency)
	if err != nil {
		return market.Detail{}, err
	}
	priceUSD, _ := strconv.ParseFloat(a.PriceUSD, 64)
	mcapUSD, _ := strconv.ParseFloat(a.MarketCapUSD, 64)
	volUSD, _ := strconv.ParseFloat(a.VolumeUSD24h, 64)
	supply, _ := strconv.ParseFloat(a.Supply, 64)
	maxSupply, _ := strconv.ParseFloat(a.MaxSupply, 64)

	prices, caps, vols := usdQuoteMaps(priceUSD, mcapUSD, volUSD)
	return market.Detail{
		Entry:      entry,
		Prices:     prices,
		MarketCaps: caps,
		Volumes:    vols,
		Changes:    approximateChanges(entry.ChangePercent24h),
		Supply: market.Supply{
			Circulating: supply,
			Total:       supply,
			Max:         maxSupply,
		},
		// CoinCap has no ATH/ATL; documented default is the current
		// price with zero change.
		ATH:         market.Extreme{Price: entry.CurrentPrice},
		ATL:         market.Extreme{Price: entry.CurrentPrice},
		Description: "",
		Links:       market.NormalizeLinks(market.Links{}),
	}, nil
}

func coincapHistory(q market.Query, body []byte) (market.ChartSeries, error) {
	var resp coincapHistoryResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return market.ChartSeries{}, transformErr("coincap", "decode history: %w", err)
	}
	if len(resp.Data) == 0 {
		return market.ChartSeries{}, transformErr("coincap", "empty history")
	}

	supply := 0.0
	if asset, ok := market.LookupID(q.AssetID); ok {
		supply = asset.Supply
	}

	samples := make([]sample, 0, len(resp.Data))
	for _, row := range resp.Data {
		price, err := strconv.ParseFloat(row.PriceUSD, 64)
		if err != nil {
			continue
		}
		price = market.ConvertUSD(price, q.Currency)
		mcap := price * supply
		samples = append(samples, sample{
			ts:     row.Time,
			price:  price,
			mcap:   mcap,
			volume: mcap * coincapVolumeRatio,
		})
	}
	if len(samples) == 0 {
		return market.ChartSeries{}, transformErr("coincap", "no parsable history rows")
	}
	return buildSeries(samples), nil
}
