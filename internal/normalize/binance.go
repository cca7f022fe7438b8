package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// Binance is an exchange, not an index: it knows USDT pairs and
// nothing about market caps or asset metadata. The transform keeps
// only pairs present in the catalog, treats USDT as USD, and derives
// market cap as price × catalog circulating supply (documented
// approximation). Binance has no detail endpoint in the registry, so
// there is no detail path here.

type binanceTicker struct {
	Symbol           string `json:"symbol"`
	LastPrice        string `json:"lastPrice"`
	PriceChangePct   string `json:"priceChangePercent"`
	QuoteVolume      string `json:"quoteVolume"`
}

func normalizeBinance(q market.Query, body []byte) (any, error) {
	switch q.Type {
	case market.QueryMarketList:
		return binanceMarkets(q, body)
	case market.QueryAssetHistory:
		return binanceHistory(q, body)
	default:
		return nil, transformErr("binance", "unsupported query type %s", q.Type)
	}
}

func binanceMarkets(q market.Query, body []byte) ([]market.Entry, error) {
	var tickers []binanceTicker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, transformErr("binance", "decode 24hr tickers: %w", err)
	}
	if len(tickers) == 0 {
		return nil, transformErr("binance", "empty ticker list")
	}

	var entries []market.Entry
	for _, t := range tickers {
		asset, ok := market.LookupBinancePair(t.Symbol)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(t.LastPrice, 64)
		if err != nil {
			continue
		}
		change, _ := strconv.ParseFloat(t.PriceChangePct, 64)
		volume, _ := strconv.ParseFloat(t.QuoteVolume, 64)

		price = market.ConvertUSD(price, q.Currency)
		entries = append(entries, market.Entry{
			ID:               asset.ID,
			Symbol:           asset.Symbol,
			Name:             asset.Name,
			Image:            market.ImageURL(asset.ID),
			CurrentPrice:     price,
			MarketCap:        price * asset.Supply,
			Volume24h:        market.ConvertUSD(volume, q.Currency),
			ChangePercent24h: change,
			MarketCapRank:    market.Rank(asset.ID),
		})
	}
	if len(entries) == 0 {
		return nil, transformErr("binance", "no catalog pairs in ticker list")
	}
	sortEntries(entries)
	return entries, nil
}

// Klines arrive as positional arrays:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume, ...]
func binanceHistory(q market.Query, body []byte) (market.ChartSeries, error) {
	var klines [][]json.RawMessage
	if err := json.Unmarshal(body, &klines); err != nil {
		return market.ChartSeries{}, transformErr("binance", "decode klines: %w", err)
	}
	if len(klines) == 0 {
		return market.ChartSeries{}, transformErr("binance", "empty kline series")
	}

	supply := 0.0
	if asset, ok := market.LookupID(q.AssetID); ok {
		supply = asset.Supply
	}

	samples := make([]sample, 0, len(klines))
	for _, k := range klines {
		if len(k) < 8 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			continue
		}
		closePrice, err := klineFloat(k[4])
		if err != nil {
			continue
		}
		quoteVolume, _ := klineFloat(k[7])

		price := market.ConvertUSD(closePrice, q.Currency)
		samples = append(samples, sample{
			ts:     openTime,
			price:  price,
			mcap:   price * supply,
			volume: market.ConvertUSD(quoteVolume, q.Currency),
		})
	}
	if len(samples) == 0 {
		return market.ChartSeries{}, transformErr("binance", "no parsable klines")
	}
	return buildSeries(samples), nil
}

func klineFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
