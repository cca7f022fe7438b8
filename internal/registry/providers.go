package registry

import (
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// Keys carries optional API credentials for providers that accept
// them. Empty keys leave the provider on its anonymous tier.
type Keys struct {
	CoinGecko string
	CoinCap   string
}

// Default builds the production provider set. CoinGecko is the richest
// source and goes first; CoinPaprika shares its aggressive public rate
// limit; Binance carries no detail endpoint, so detail queries never
// consider it.
func Default(keys Keys) *Registry {
	coingeckoHeaders := map[string]string{}
	if keys.CoinGecko != "" {
		coingeckoHeaders["x-cg-demo-api-key"] = keys.CoinGecko
	}
	coincapHeaders := map[string]string{}
	if keys.CoinCap != "" {
		coincapHeaders["Authorization"] = "Bearer " + keys.CoinCap
	}

	return New(
		Provider{
			Name:     "coingecko",
			BaseURL:  "https://api.coingecko.com/api/v3",
			Priority: 1,
			Headers:  coingeckoHeaders,
			Rate:     RatePolicy{MaxRequests: 10, Window: 60 * time.Second},
			Endpoints: map[market.QueryType]string{
				market.QueryMarketList:   "/coins/markets?vs_currency={currency}&order=market_cap_desc&per_page=100&page=1&sparkline=false",
				market.QueryAssetDetail:  "/coins/{id}?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false",
				market.QueryAssetHistory: "/coins/{id}/market_chart?vs_currency={currency}&days={days}",
			},
		},
		Provider{
			Name:     "coincap",
			BaseURL:  "https://api.coincap.io/v2",
			Priority: 2,
			Headers:  coincapHeaders,
			Endpoints: map[market.QueryType]string{
				market.QueryMarketList:   "/assets?limit=100",
				market.QueryAssetDetail:  "/assets/{coincap_id}",
				market.QueryAssetHistory: "/assets/{coincap_id}/history?interval={interval_cc}&start={start_ms}&end={end_ms}",
			},
		},
		Provider{
			Name:     "coinpaprika",
			BaseURL:  "https://api.coinpaprika.com/v1",
			Priority: 3,
			Rate:     RatePolicy{MaxRequests: 10, Window: 60 * time.Second},
			Endpoints: map[market.QueryType]string{
				market.QueryMarketList:   "/tickers?quotes=USD&limit=100",
				market.QueryAssetDetail:  "/tickers/{paprika_id}?quotes=USD",
				market.QueryAssetHistory: "/tickers/{paprika_id}/historical?start={start_date}&interval={interval_cp}",
			},
		},
		Provider{
			Name:     "binance",
			BaseURL:  "https://api.binance.com",
			Priority: 4,
			Endpoints: map[market.QueryType]string{
				market.QueryMarketList:   "/api/v3/ticker/24hr",
				market.QueryAssetHistory: "/api/v3/klines?symbol={binance_pair}&interval=1d&limit={days}",
			},
		},
	)
}
