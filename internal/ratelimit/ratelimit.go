package ratelimit

import (
	"sync"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/clock"
	"github.com/ivanstegen/WorkingCrypto/internal/registry"
)

// Limiter does sliding-window request accounting per provider. Each
// check prunes timestamps older than the window, then either appends
// the new request or refuses it. A refused check has no side effect
// beyond the prune, so a skipped provider stays eligible the moment
// its window slides past. A 429 from the provider itself parks it
// until the server-provided (or policy-derived) reset instant.
type Limiter struct {
	clk clock.Clock

	mu          sync.Mutex
	policies    map[string]registry.RatePolicy
	windows     map[string][]time.Time
	parkedUntil map[string]time.Time
}

// New builds a limiter from the registry's static rate policies.
// Providers without a policy always pass.
func New(reg *registry.Registry, clk clock.Clock) *Limiter {
	policies := make(map[string]registry.RatePolicy)
	for _, p := range reg.All() {
		if p.Rate.Enabled() {
			policies[p.Name] = p.Rate
		}
	}
	return &Limiter{
		clk:         clk,
		policies:    policies,
		windows:     make(map[string][]time.Time),
		parkedUntil: make(map[string]time.Time),
	}
}

// TryRecord attempts to account one request for the provider. The
// prune, the check, and the append happen under one lock so two
// concurrent fetches can never both slip through a nearly-full window.
func (l *Limiter) TryRecord(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clk.Now()
	if until, ok := l.parkedUntil[name]; ok {
		if now.Before(until) {
			return false
		}
		delete(l.parkedUntil, name)
	}

	policy, ok := l.policies[name]
	if !ok {
		return true
	}

	window := l.pruneLocked(name, now, policy)
	if len(window) >= policy.MaxRequests {
		l.windows[name] = window
		return false
	}
	l.windows[name] = append(window, now)
	return true
}

// Park blocks the provider until the given instant, regardless of its
// window state. Used for server-side 429 signals.
func (l *Limiter) Park(name string, until time.Time) {
	l.mu.Lock()
	l.parkedUntil[name] = until
	l.mu.Unlock()
}

// Limited reports whether the provider would currently be refused, and
// if so when its budget frees up again.
func (l *Limiter) Limited(name string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clk.Now()
	if until, ok := l.parkedUntil[name]; ok && now.Before(until) {
		return true, until
	}

	policy, ok := l.policies[name]
	if !ok {
		return false, time.Time{}
	}
	window := l.pruneLocked(name, now, policy)
	l.windows[name] = window
	if len(window) < policy.MaxRequests {
		return false, time.Time{}
	}
	// The oldest request leaving the window frees one slot.
	return true, window[0].Add(policy.Window)
}

func (l *Limiter) pruneLocked(name string, now time.Time, policy registry.RatePolicy) []time.Time {
	cutoff := now.Add(-policy.Window)
	window := l.windows[name]
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}
