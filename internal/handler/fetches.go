package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/store"
)

// Fetches lists recent audit rows plus a 24h per-source breakdown.
// Returns 503 when no database is configured.
func Fetches(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			http.Error(w, `{"error":"audit log not configured"}`, http.StatusServiceUnavailable)
			return
		}

		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil {
				limit = n
			}
		}

		records, err := s.RecentFetches(r.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"query failed"}`, http.StatusInternalServerError)
			return
		}
		counts, err := s.SourceCounts(r.Context(), 24*time.Hour)
		if err != nil {
			http.Error(w, `{"error":"query failed"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fetches":       records,
			"source_counts": counts,
		})
	}
}
