package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivanstegen/WorkingCrypto/internal/fetch"
	"github.com/ivanstegen/WorkingCrypto/internal/market"
)

// envelope wraps every data response with its serving source so the
// frontend can badge demo data.
type envelope struct {
	Data    any    `json:"data"`
	Source  string `json:"source"`
	Cached  bool   `json:"cached"`
	Offline bool   `json:"offline"`
}

func writeEnvelope(w http.ResponseWriter, data any, meta fetch.Meta) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{
		Data:    data,
		Source:  meta.Source,
		Cached:  meta.Cached,
		Offline: meta.Offline,
	})
}

// queryParams validates the shared currency/refresh parameters.
func queryParams(r *http.Request) (currency string, refresh bool, err string) {
	currency = strings.ToLower(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = "usd"
	}
	if !market.CurrencySupported(currency) {
		return "", false, `{"error":"unsupported currency"}`
	}
	refresh = r.URL.Query().Get("refresh") == "true"
	return currency, refresh, ""
}

// Markets serves the ranked market listing.
func Markets(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currency, refresh, errMsg := queryParams(r)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}

		entries, meta, err := engine.MarketList(r.Context(), currency, refresh)
		if err != nil {
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeEnvelope(w, entries, meta)
	}
}

// AssetDetail serves the full detail view for one asset.
func AssetDetail(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(chi.URLParam(r, "id"))
		if _, ok := market.LookupID(id); !ok {
			http.Error(w, `{"error":"unknown asset"}`, http.StatusNotFound)
			return
		}
		currency, refresh, errMsg := queryParams(r)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}

		detail, meta, err := engine.AssetDetail(r.Context(), id, currency, refresh)
		if err != nil {
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeEnvelope(w, detail, meta)
	}
}

// AssetHistory serves the three-sequence chart series.
func AssetHistory(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(chi.URLParam(r, "id"))
		if _, ok := market.LookupID(id); !ok {
			http.Error(w, `{"error":"unknown asset"}`, http.StatusNotFound)
			return
		}
		currency, refresh, errMsg := queryParams(r)
		if errMsg != "" {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}

		days := 30
		if d := r.URL.Query().Get("days"); d != "" {
			n, err := strconv.Atoi(d)
			if err != nil || n < 1 || n > 365 {
				http.Error(w, `{"error":"days must be between 1 and 365"}`, http.StatusBadRequest)
				return
			}
			days = n
		}

		series, meta, err := engine.AssetHistory(r.Context(), id, currency, days, refresh)
		if err != nil {
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeEnvelope(w, series, meta)
	}
}
