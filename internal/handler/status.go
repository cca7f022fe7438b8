package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/fetch"
)

type providerStatus struct {
	Name          string    `json:"name"`
	Priority      int       `json:"priority"`
	Operational   bool      `json:"operational"`
	LastCheckedAt time.Time `json:"last_checked_at,omitempty"`
	RateLimited   bool      `json:"rate_limited"`
	RateResetAt   time.Time `json:"rate_reset_at,omitempty"`
}

type statusResponse struct {
	Current   string           `json:"current"`
	Pinned    string           `json:"pinned,omitempty"`
	Providers []providerStatus `json:"providers"`
}

// Status reports per-provider operational and rate-limit state plus
// the current serving source.
func Status(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker := engine.Tracker()
		limiter := engine.Limiter()
		statuses := tracker.Statuses()

		resp := statusResponse{
			Current: tracker.Current(),
			Pinned:  tracker.Pinned(),
		}
		for _, p := range engine.Registry().All() {
			st := statuses[p.Name]
			limited, resetAt := limiter.Limited(p.Name)
			ps := providerStatus{
				Name:          p.Name,
				Priority:      p.Priority,
				Operational:   st.Operational,
				LastCheckedAt: st.LastCheckedAt,
				RateLimited:   limited,
			}
			if limited {
				ps.RateResetAt = resetAt
			}
			resp.Providers = append(resp.Providers, ps)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Pin sets the preferred provider for subsequent dispatches.
func Pin(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Provider string `json:"provider"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Provider == "" {
			http.Error(w, `{"error":"provider is required"}`, http.StatusBadRequest)
			return
		}
		if err := engine.Tracker().Pin(body.Provider); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"pinned": body.Provider})
	}
}

// Unpin clears the preferred provider.
func Unpin(engine *fetch.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		engine.Tracker().Unpin()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pinned":""}`))
	}
}
