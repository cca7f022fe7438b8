package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/clock"
)

func TestMemoryGetPut(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	m := NewMemory(clk)
	ctx := context.Background()

	if _, ok := m.Get(ctx, "markets:usd"); ok {
		t.Fatal("empty cache returned an entry")
	}

	e := Entry{Payload: []byte(`[]`), Source: "coingecko", CreatedAt: clk.Now()}
	m.Put(ctx, "markets:usd", e, 10*time.Minute)

	got, ok := m.Get(ctx, "markets:usd")
	if !ok {
		t.Fatal("fresh entry not returned")
	}
	if got.Source != "coingecko" || string(got.Payload) != `[]` {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	m := NewMemory(clk)
	ctx := context.Background()

	m.Put(ctx, "detail:bitcoin:usd", Entry{Payload: []byte(`{}`), Source: "coincap"}, 15*time.Minute)

	clk.Advance(14 * time.Minute)
	if _, ok := m.Get(ctx, "detail:bitcoin:usd"); !ok {
		t.Error("entry expired before its TTL")
	}

	clk.Advance(time.Minute)
	if _, ok := m.Get(ctx, "detail:bitcoin:usd"); ok {
		t.Error("entry served past its TTL")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	clk := clock.NewFake(time.Now())
	m := NewMemory(clk)
	ctx := context.Background()

	m.Put(ctx, "markets:usd", Entry{Source: "mock"}, time.Minute)
	m.Put(ctx, "markets:usd", Entry{Source: "coingecko"}, 10*time.Minute)

	got, ok := m.Get(ctx, "markets:usd")
	if !ok || got.Source != "coingecko" {
		t.Errorf("got %+v, %v; want overwritten entry", got, ok)
	}
}

func TestMemoryZeroTTLIgnored(t *testing.T) {
	clk := clock.NewFake(time.Now())
	m := NewMemory(clk)
	ctx := context.Background()

	m.Put(ctx, "k", Entry{Source: "x"}, 0)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("zero-TTL entry stored")
	}
}

func TestMemorySweep(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	m := NewMemory(clk)
	ctx := context.Background()

	m.Put(ctx, "short", Entry{Source: "a"}, time.Minute)
	m.Put(ctx, "long", Entry{Source: "b"}, time.Hour)

	clk.Advance(2 * time.Minute)
	if removed := m.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if _, ok := m.Get(ctx, "long"); !ok {
		t.Error("live entry swept")
	}
}
