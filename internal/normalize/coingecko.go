package normalize

import (
	"encoding/json"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// CoinGecko is the richest provider: its field names are close to the
// canonical schema (the schema was modeled on it), so mapping is
// mostly renames plus defaulting.

type geckoMarketRow struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Image            string  `json:"image"`
	CurrentPrice     float64 `json:"current_price"`
	MarketCap        float64 `json:"market_cap"`
	MarketCapRank    int     `json:"market_cap_rank"`
	TotalVolume      float64 `json:"total_volume"`
	ChangePercent24h float64 `json:"price_change_percentage_24h"`
}

type geckoDetail struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Description   struct {
		EN string `json:"en"`
	} `json:"description"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage       []string `json:"homepage"`
		BlockchainSite []string `json:"blockchain_site"`
		OfficialForum  []string `json:"official_forum_url"`
		ReposURL       struct {
			Github []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData *struct {
		CurrentPrice     map[string]float64 `json:"current_price"`
		MarketCap        map[string]float64 `json:"market_cap"`
		TotalVolume      map[string]float64 `json:"total_volume"`
		Change24h        float64            `json:"price_change_percentage_24h"`
		Change7d         float64            `json:"price_change_percentage_7d"`
		Change30d        float64            `json:"price_change_percentage_30d"`
		Change60d        float64            `json:"price_change_percentage_60d"`
		Change200d       float64            `json:"price_change_percentage_200d"`
		Change1y         float64            `json:"price_change_percentage_1y"`
		Circulating      float64            `json:"circulating_supply"`
		Total            float64            `json:"total_supply"`
		Max              float64            `json:"max_supply"`
		ATH              map[string]float64 `json:"ath"`
		ATHChangePercent map[string]float64 `json:"ath_change_percentage"`
		ATHDate          map[string]string  `json:"ath_date"`
		ATL              map[string]float64 `json:"atl"`
		ATLChangePercent map[string]float64 `json:"atl_change_percentage"`
		ATLDate          map[string]string  `json:"atl_date"`
	} `json:"market_data"`
}

type geckoChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func normalizeCoinGecko(q market.Query, body []byte) (any, error) {
	switch q.Type {
	case market.QueryMarketList:
		return geckoMarkets(body)
	case market.QueryAssetDetail:
		return geckoAssetDetail(q, body)
	default:
		return geckoHistory(body)
	}
}

func geckoMarkets(body []byte) ([]market.Entry, error) {
	var rows []geckoMarketRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, transformErr("coingecko", "decode markets: %w", err)
	}
	if len(rows) == 0 {
		return nil, transformErr("coingecko", "empty market list")
	}

	entries := make([]market.Entry, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		image := r.Image
		if image == "" {
			image = market.ImageURL(r.ID)
		}
		entries = append(entries, market.Entry{
			ID:               r.ID,
			Symbol:           r.Symbol,
			Name:             r.Name,
			Image:            image,
			CurrentPrice:     r.CurrentPrice,
			MarketCap:        r.MarketCap,
			Volume24h:        r.TotalVolume,
			ChangePercent24h: r.ChangePercent24h,
			MarketCapRank:    r.MarketCapRank,
		})
	}
	if len(entries) == 0 {
		return nil, transformErr("coingecko", "no usable market rows")
	}
	sortEntries(entries)
	return entries, nil
}

func geckoAssetDetail(q market.Query, body []byte) (market.Detail, error) {
	var d geckoDetail
	if err := json.Unmarshal(body, &d); err != nil {
		return market.Detail{}, transformErr("coingecko", "decode detail: %w", err)
	}
	if d.ID == "" || d.MarketData == nil {
		return market.Detail{}, transformErr("coingecko", "detail missing id or market_data")
	}
	md := d.MarketData
	cur := q.Currency

	image := d.Image.Large
	if image == "" {
		image = market.ImageURL(d.ID)
	}
	rank := d.MarketCapRank
	if rank == 0 {
		rank = market.Rank(d.ID)
	}

	detail := market.Detail{
		Entry: market.Entry{
			ID:               d.ID,
			Symbol:           d.Symbol,
			Name:             d.Name,
			Image:            image,
			CurrentPrice:     md.CurrentPrice[cur],
			MarketCap:        md.MarketCap[cur],
			Volume24h:        md.TotalVolume[cur],
			ChangePercent24h: md.Change24h,
			MarketCapRank:    rank,
		},
		Prices:     filterCurrencies(md.CurrentPrice),
		MarketCaps: filterCurrencies(md.MarketCap),
		Volumes:    filterCurrencies(md.TotalVolume),
		Changes: market.ChangeSet{
			H24:  md.Change24h,
			D7:   md.Change7d,
			D30:  md.Change30d,
			D60:  md.Change60d,
			D200: md.Change200d,
			Y1:   md.Change1y,
		},
		Supply: market.Supply{
			Circulating: md.Circulating,
			Total:       md.Total,
			Max:         md.Max,
		},
		ATH: market.Extreme{
			Price:         md.ATH[cur],
			Date:          parseISODate(md.ATHDate[cur]),
			ChangePercent: md.ATHChangePercent[cur],
		},
		ATL: market.Extreme{
			Price:         md.ATL[cur],
			Date:          parseISODate(md.ATLDate[cur]),
			ChangePercent: md.ATLChangePercent[cur],
		},
		Description: d.Description.EN,
		Links: market.NormalizeLinks(market.Links{
			Homepage:  dropEmpty(d.Links.Homepage),
			Explorers: dropEmpty(d.Links.BlockchainSite),
			Forums:    dropEmpty(d.Links.OfficialForum),
			Repos:     dropEmpty(d.Links.ReposURL.Github),
		}),
	}
	return detail, nil
}

func geckoHistory(body []byte) (market.ChartSeries, error) {
	var c geckoChart
	if err := json.Unmarshal(body, &c); err != nil {
		return market.ChartSeries{}, transformErr("coingecko", "decode chart: %w", err)
	}
	if len(c.Prices) == 0 {
		return market.ChartSeries{}, transformErr("coingecko", "empty price series")
	}

	// The three arrays are parallel but occasionally ragged; index
	// into caps/volumes defensively and default to zero.
	samples := make([]sample, 0, len(c.Prices))
	for i, p := range c.Prices {
		s := sample{ts: int64(p[0]), price: p[1]}
		if i < len(c.MarketCaps) {
			s.mcap = c.MarketCaps[i][1]
		}
		if i < len(c.TotalVolumes) {
			s.volume = c.TotalVolumes[i][1]
		}
		samples = append(samples, s)
	}
	return buildSeries(samples), nil
}

func filterCurrencies(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(market.SupportedCurrencies))
	for _, cur := range market.SupportedCurrencies {
		out[cur] = m[cur] // absent currencies default to 0, key stays present
	}
	return out
}

func parseISODate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func dropEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
