package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/clock"
)

// Entry is one cached canonical payload with its provenance.
type Entry struct {
	Payload   []byte    `json:"payload"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache stores canonical responses keyed by logical query. Entries are
// never returned past their TTL and never updated in place; the next
// successful fetch overwrites them.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Put(ctx context.Context, key string, e Entry, ttl time.Duration)
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// Memory is the default per-process cache. It lives and dies with the
// session, which is exactly the intended lifetime.
type Memory struct {
	clk clock.Clock

	mu    sync.RWMutex
	items map[string]memoryEntry
}

// NewMemory builds an empty in-process cache.
func NewMemory(clk clock.Clock) *Memory {
	return &Memory{clk: clk, items: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, bool) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.clk.Now().Before(item.expiresAt) {
		return Entry{}, false
	}
	return item.entry, true
}

func (m *Memory) Put(_ context.Context, key string, e Entry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.items[key] = memoryEntry{entry: e, expiresAt: m.clk.Now().Add(ttl)}
	m.mu.Unlock()
}

// Sweep drops expired entries. The map otherwise only sheds keys on
// overwrite; callers can run this on a timer if footprint matters.
func (m *Memory) Sweep() int {
	now := m.clk.Now()
	removed := 0
	m.mu.Lock()
	for key, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, key)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}
