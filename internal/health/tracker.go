package health

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/clock"
	"github.com/ivanstegen/WorkingCrypto/internal/market"
	"github.com/ivanstegen/WorkingCrypto/internal/registry"
)

const (
	// ResetInterval is how often every provider is unconditionally set
	// back to operational. There is no active health probe; this sweep
	// is the recovery mechanism.
	ResetInterval = 15 * time.Minute

	// StartupResetDelay is the one extra sweep shortly after boot.
	StartupResetDelay = 60 * time.Second
)

// Status is the mutable per-provider operational record.
type Status struct {
	Operational   bool      `json:"operational"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// Tracker owns every ProviderStatus plus the current-source pointer
// and the user-pinned preference. All mutations take the mutex, so two
// concurrent failures against the same provider settle into a single
// well-defined state.
type Tracker struct {
	reg    *registry.Registry
	clk    clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	statuses map[string]*Status
	current  string
	pinned   string
}

// NewTracker initializes every provider as operational, with the
// highest-priority provider as the current source.
func NewTracker(reg *registry.Registry, clk clock.Clock, logger *slog.Logger) *Tracker {
	t := &Tracker{
		reg:      reg,
		clk:      clk,
		logger:   logger,
		statuses: make(map[string]*Status),
	}
	for _, name := range reg.Names() {
		t.statuses[name] = &Status{Operational: true}
	}
	t.current = t.bestOperationalLocked()
	return t
}

// IsOperational reports the provider's current flag. Unknown providers
// are not operational.
func (t *Tracker) IsOperational(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.statuses[name]
	return ok && s.Operational
}

// MarkResult records a dispatch outcome. A failure flips the provider
// down and, if it was the current source, hands the pointer to the
// best remaining operational provider (or the mock pseudo-source). A
// success flips it up and reclaims the pointer from mock.
func (t *Tracker) MarkResult(name string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.statuses[name]
	if !ok {
		return
	}
	s.Operational = success
	s.LastCheckedAt = t.clk.Now()

	if !success && t.current == name {
		t.current = t.bestOperationalLocked()
		t.logger.Warn("provider down, current source reassigned",
			"provider", name, "current", t.current)
	}
	if success && t.current == market.SourceMock {
		t.current = name
	}
}

// SetCurrent points the current-source indicator at the provider that
// just satisfied a request. Display-only state; dispatch ordering
// never consults it.
func (t *Tracker) SetCurrent(name string) {
	t.mu.Lock()
	t.current = name
	t.mu.Unlock()
}

// Current returns the source label most recently serving data.
func (t *Tracker) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// ResetAll unconditionally sets every provider back to operational so
// previously-failed providers get retried.
func (t *Tracker) ResetAll() {
	now := t.clk.Now()
	t.mu.Lock()
	for _, s := range t.statuses {
		s.Operational = true
		s.LastCheckedAt = now
	}
	if t.current == market.SourceMock {
		t.current = t.bestOperationalLocked()
	}
	t.mu.Unlock()
	t.logger.Info("provider statuses reset")
}

// MarkAllDown flips every provider non-operational in one sweep. Used
// when the connectivity probe says the host is offline, so dispatch
// does not pay per-provider timeouts.
func (t *Tracker) MarkAllDown() {
	now := t.clk.Now()
	t.mu.Lock()
	for _, s := range t.statuses {
		s.Operational = false
		s.LastCheckedAt = now
	}
	t.current = market.SourceMock
	t.mu.Unlock()
}

// Pin records a user-preferred provider. Only known, currently
// operational providers can be pinned.
func (t *Tracker) Pin(name string) error {
	if _, ok := t.reg.Get(name); !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.statuses[name]
	if s == nil || !s.Operational {
		return fmt.Errorf("provider %q is not operational", name)
	}
	t.pinned = name
	return nil
}

// Unpin clears the preference.
func (t *Tracker) Unpin() {
	t.mu.Lock()
	t.pinned = ""
	t.mu.Unlock()
}

// Pinned returns the pinned provider name, empty when none.
func (t *Tracker) Pinned() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pinned
}

// Statuses returns a point-in-time copy of every provider status,
// keyed by name.
func (t *Tracker) Statuses() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.statuses))
	for name, s := range t.statuses {
		out[name] = *s
	}
	return out
}

// bestOperationalLocked returns the highest-priority operational
// provider, or the mock pseudo-source when none remain. Caller holds
// the mutex.
func (t *Tracker) bestOperationalLocked() string {
	providers := t.reg.All()
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})
	for _, p := range providers {
		if s := t.statuses[p.Name]; s != nil && s.Operational {
			return p.Name
		}
	}
	return market.SourceMock
}

// Run drives the periodic reset schedule: one sweep 60 seconds after
// startup, then every 15 minutes until the context ends.
func (t *Tracker) Run(ctx context.Context) {
	startup := time.NewTimer(StartupResetDelay)
	defer startup.Stop()
	ticker := time.NewTicker(ResetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-startup.C:
			t.ResetAll()
		case <-ticker.C:
			t.ResetAll()
		}
	}
}
