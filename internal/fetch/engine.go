// Package fetch is the failover dispatcher: it answers the three
// logical queries by checking the cache, walking the operational
// providers in priority order with retries and backoff, normalizing
// whichever payload arrives first, and manufacturing mock data when
// everything is down. Callers get a schema-valid payload and a source
// label; they never see per-provider failures.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ivanstegen/WorkingCrypto/internal/cache"
	"github.com/ivanstegen/WorkingCrypto/internal/clock"
	"github.com/ivanstegen/WorkingCrypto/internal/health"
	"github.com/ivanstegen/WorkingCrypto/internal/market"
	"github.com/ivanstegen/WorkingCrypto/internal/metrics"
	"github.com/ivanstegen/WorkingCrypto/internal/mockdata"
	"github.com/ivanstegen/WorkingCrypto/internal/normalize"
	"github.com/ivanstegen/WorkingCrypto/internal/ratelimit"
	"github.com/ivanstegen/WorkingCrypto/internal/registry"
	"github.com/ivanstegen/WorkingCrypto/internal/store"
)

const (
	// MockTTLCap shortens the cache lifetime of mock payloads so real
	// providers are retried soon after an outage.
	MockTTLCap = 5 * time.Minute

	maxResponseBytes = 8 << 20
)

// Options tunes the dispatch loop. Zero fields take the defaults.
type Options struct {
	MaxAttempts    int           // per provider, default 3
	AttemptTimeout time.Duration // per attempt, default 30s
	BackoffBase    time.Duration // default 500ms, doubles per retry
	UserAgent      string

	Client       *http.Client
	Clock        clock.Clock
	Generator    *mockdata.Generator
	Audit        *store.Store                    // nil disables the audit log
	Connectivity func(context.Context) bool      // nil assumes online
}

// Meta describes how a query was served: the observability side
// channel next to every payload.
type Meta struct {
	Source  string `json:"source"`
	Cached  bool   `json:"cached"`
	Offline bool   `json:"offline"`
}

// Engine composes the registry, tracker, limiter, and cache into the
// failover algorithm. One engine serves the whole process; concurrent
// fetches share its bookkeeping through the components' own locks.
type Engine struct {
	reg     *registry.Registry
	tracker *health.Tracker
	limiter *ratelimit.Limiter
	cache   cache.Cache
	logger  *slog.Logger

	client       *http.Client
	clk          clock.Clock
	gen          *mockdata.Generator
	audit        *store.Store
	connectivity func(context.Context) bool

	maxAttempts    int
	attemptTimeout time.Duration
	backoffBase    time.Duration
	userAgent      string
}

// New wires an engine. Dependencies are explicit handles so tests can
// substitute deterministic clocks and local HTTP servers.
func New(reg *registry.Registry, tracker *health.Tracker, limiter *ratelimit.Limiter,
	c cache.Cache, logger *slog.Logger, opts Options) *Engine {

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 30 * time.Second
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Generator == nil {
		opts.Generator = mockdata.New()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "workingcrypto/1.0"
	}

	return &Engine{
		reg:            reg,
		tracker:        tracker,
		limiter:        limiter,
		cache:          c,
		logger:         logger,
		client:         opts.Client,
		clk:            opts.Clock,
		gen:            opts.Generator,
		audit:          opts.Audit,
		connectivity:   opts.Connectivity,
		maxAttempts:    opts.MaxAttempts,
		attemptTimeout: opts.AttemptTimeout,
		backoffBase:    opts.BackoffBase,
		userAgent:      opts.UserAgent,
	}
}

// MarketList serves the ranked market listing for a currency.
func (e *Engine) MarketList(ctx context.Context, currency string, force bool) ([]market.Entry, Meta, error) {
	q := market.Query{Type: market.QueryMarketList, Currency: currency}
	res, err := e.fetch(ctx, q, force)
	if err != nil {
		return nil, Meta{}, err
	}
	var entries []market.Entry
	if err := json.Unmarshal(res.payload, &entries); err != nil {
		return nil, Meta{}, fmt.Errorf("decode cached market list: %w", err)
	}
	return entries, res.meta, nil
}

// AssetDetail serves the full detail payload for one asset.
func (e *Engine) AssetDetail(ctx context.Context, assetID, currency string, force bool) (market.Detail, Meta, error) {
	q := market.Query{Type: market.QueryAssetDetail, Currency: currency, AssetID: assetID}
	res, err := e.fetch(ctx, q, force)
	if err != nil {
		return market.Detail{}, Meta{}, err
	}
	var detail market.Detail
	if err := json.Unmarshal(res.payload, &detail); err != nil {
		return market.Detail{}, Meta{}, fmt.Errorf("decode cached detail: %w", err)
	}
	return detail, res.meta, nil
}

// AssetHistory serves the three-sequence chart series.
func (e *Engine) AssetHistory(ctx context.Context, assetID, currency string, days int, force bool) (market.ChartSeries, Meta, error) {
	q := market.Query{Type: market.QueryAssetHistory, Currency: currency, AssetID: assetID, Days: days}
	res, err := e.fetch(ctx, q, force)
	if err != nil {
		return market.ChartSeries{}, Meta{}, err
	}
	var series market.ChartSeries
	if err := json.Unmarshal(res.payload, &series); err != nil {
		return market.ChartSeries{}, Meta{}, fmt.Errorf("decode cached series: %w", err)
	}
	return series, res.meta, nil
}

type result struct {
	payload []byte
	meta    Meta
}

// fetch runs the failover algorithm for one logical query. The only
// error it can return is a defect in the mock path itself; provider
// failures are absorbed.
func (e *Engine) fetch(ctx context.Context, q market.Query, force bool) (result, error) {
	start := e.clk.Now()
	key := q.Key()
	qt := string(q.Type)

	if !force {
		if entry, ok := e.cache.Get(ctx, key); ok {
			metrics.CacheHits.WithLabelValues(qt).Inc()
			metrics.FetchTotal.WithLabelValues(qt, entry.Source, "cache").Inc()
			return result{payload: entry.Payload, meta: Meta{Source: entry.Source, Cached: true}}, nil
		}
		metrics.CacheMisses.WithLabelValues(qt).Inc()
	}

	if e.connectivity != nil && !e.connectivity(ctx) {
		e.logger.Warn("connectivity probe failed, skipping all providers", "query", key)
		e.tracker.MarkAllDown()
		e.syncProviderGauges()
		return e.serveMock(ctx, q, key, start, true)
	}

	for _, p := range e.candidates(q.Type) {
		if !e.limiter.TryRecord(p.Name) {
			metrics.RateLimitSkips.WithLabelValues(p.Name).Inc()
			e.logger.Info("provider rate-limited, skipping", "provider", p.Name, "query", key)
			continue
		}

		payload, err := e.tryProvider(ctx, p, q)
		if err == nil {
			e.tracker.MarkResult(p.Name, true)
			e.tracker.SetCurrent(p.Name)
			e.syncProviderGauges()
			e.cache.Put(ctx, key, cache.Entry{Payload: payload, Source: p.Name, CreatedAt: e.clk.Now()}, q.Type.TTL())
			e.finish(ctx, q, key, p.Name, "ok", start)
			return result{payload: payload, meta: Meta{Source: p.Name}}, nil
		}

		var ae *AttemptError
		if errors.As(err, &ae) && ae.Kind == KindRateLimited {
			e.limiter.Park(p.Name, ae.RetryAfter)
			metrics.ProviderRateLimited.WithLabelValues(p.Name).Set(1)
			e.logger.Warn("provider rate-limited by server", "provider", p.Name, "retry_after", ae.RetryAfter)
			continue // distinct failure mode: no status change
		}

		e.tracker.MarkResult(p.Name, false)
		e.syncProviderGauges()
		e.logger.Warn("provider failed, trying next", "provider", p.Name, "query", key, "error", err)
	}

	return e.serveMock(ctx, q, key, start, false)
}

// candidates builds the ordered attempt list: providers configured for
// the query type, currently operational, ascending priority. A pinned
// provider jumps the queue; priority order is the tie-break behind it.
func (e *Engine) candidates(t market.QueryType) []registry.Provider {
	configured := e.reg.Candidates(t)
	out := make([]registry.Provider, 0, len(configured))
	for _, p := range configured {
		if e.tracker.IsOperational(p.Name) {
			out = append(out, p)
		}
	}
	pinned := e.tracker.Pinned()
	if pinned == "" {
		return out
	}
	for i, p := range out {
		if p.Name == pinned && i > 0 {
			reordered := make([]registry.Provider, 0, len(out))
			reordered = append(reordered, p)
			reordered = append(reordered, out[:i]...)
			reordered = append(reordered, out[i+1:]...)
			return reordered
		}
	}
	return out
}

// tryProvider spends up to maxAttempts on one provider, with
// exponential backoff between attempts. A server 429 and a transform
// failure both end the provider immediately; only transport-level
// failures are worth retrying.
func (e *Engine) tryProvider(ctx context.Context, p registry.Provider, q market.Query) ([]byte, error) {
	url, err := p.URL(q, e.clk.Now())
	if err != nil {
		// Can't build a URL (e.g. asset has no pair on this venue):
		// the provider is effectively unconfigured for this query.
		return nil, &AttemptError{Provider: p.Name, Kind: KindTransform, Err: err}
	}

	var lastErr *AttemptError
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := e.backoffBase << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &AttemptError{Provider: p.Name, Kind: KindNetwork, Err: ctx.Err()}
			case <-timer.C:
			}
		}

		body, aerr := e.doRequest(ctx, p, url)
		if aerr == nil {
			canonical, nerr := normalize.Normalize(p.Name, q, body)
			if nerr != nil {
				metrics.AttemptTotal.WithLabelValues(p.Name, string(KindTransform)).Inc()
				return nil, &AttemptError{Provider: p.Name, Kind: KindTransform, Err: nerr}
			}
			payload, merr := json.Marshal(canonical)
			if merr != nil {
				return nil, &AttemptError{Provider: p.Name, Kind: KindTransform, Err: merr}
			}
			metrics.AttemptTotal.WithLabelValues(p.Name, "ok").Inc()
			return payload, nil
		}

		metrics.AttemptTotal.WithLabelValues(p.Name, string(aerr.Kind)).Inc()
		lastErr = aerr
		if !aerr.retryable() {
			return nil, aerr
		}
	}
	return nil, lastErr
}

// doRequest performs one time-bounded HTTP attempt.
func (e *Engine) doRequest(ctx context.Context, p registry.Provider, url string) ([]byte, *AttemptError) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &AttemptError{Provider: p.Name, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.userAgent)
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
		return nil, &AttemptError{Provider: p.Name, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &AttemptError{
			Provider:   p.Name,
			Kind:       KindRateLimited,
			Status:     resp.StatusCode,
			RetryAfter: e.retryAfter(p, resp),
			Err:        errors.New("rate limited by provider"),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AttemptError{
			Provider: p.Name,
			Kind:     KindHTTP,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &AttemptError{Provider: p.Name, Kind: KindNetwork, Err: err}
	}
	return body, nil
}

// retryAfter honors the server's Retry-After hint, falling back to the
// provider's configured window, then to one minute.
func (e *Engine) retryAfter(p registry.Provider, resp *http.Response) time.Time {
	now := e.clk.Now()
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
			return now.Add(time.Duration(secs) * time.Second)
		}
		if at, err := http.ParseTime(h); err == nil && at.After(now) {
			return at
		}
	}
	if p.Rate.Enabled() {
		return now.Add(p.Rate.Window)
	}
	return now.Add(time.Minute)
}

// serveMock is the end of the line: synthesize a schema-valid payload,
// cache it briefly, and hand it back labeled as mock. The only error
// that can escape is a marshal defect in the generator output.
func (e *Engine) serveMock(ctx context.Context, q market.Query, key string, start time.Time, offline bool) (result, error) {
	now := e.clk.Now()
	var canonical any
	switch q.Type {
	case market.QueryAssetDetail:
		canonical = e.gen.AssetDetail(q.AssetID, q.Currency, now)
	case market.QueryAssetHistory:
		canonical = e.gen.AssetHistory(q.AssetID, q.Currency, q.Days, now)
	default:
		canonical = e.gen.MarketList(q.Currency, now)
	}
	payload, err := json.Marshal(canonical)
	if err != nil {
		return result{}, fmt.Errorf("mock generator produced unmarshalable payload: %w", err)
	}

	ttl := q.Type.TTL()
	if ttl > MockTTLCap {
		ttl = MockTTLCap
	}
	e.cache.Put(ctx, key, cache.Entry{Payload: payload, Source: market.SourceMock, CreatedAt: now}, ttl)
	e.tracker.SetCurrent(market.SourceMock)

	metrics.MockServes.WithLabelValues(string(q.Type)).Inc()
	e.finish(ctx, q, key, market.SourceMock, "mock", start)
	e.logger.Error("all providers exhausted, serving mock data", "query", key, "offline", offline)

	return result{payload: payload, meta: Meta{Source: market.SourceMock, Offline: offline}}, nil
}

// finish records the fetch outcome in metrics and the audit log.
func (e *Engine) finish(ctx context.Context, q market.Query, key, source, status string, start time.Time) {
	elapsed := e.clk.Now().Sub(start)
	qt := string(q.Type)
	metrics.FetchTotal.WithLabelValues(qt, source, status).Inc()
	metrics.FetchDuration.WithLabelValues(qt).Observe(elapsed.Seconds())

	if err := e.audit.RecordFetch(ctx, store.FetchRecord{
		QueryKey:   key,
		QueryType:  qt,
		Source:     source,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
	}); err != nil {
		e.logger.Warn("audit record failed", "query", key, "error", err)
	}
}

// syncProviderGauges mirrors tracker and limiter state into gauges.
func (e *Engine) syncProviderGauges() {
	for name, st := range e.tracker.Statuses() {
		v := 0.0
		if st.Operational {
			v = 1
		}
		metrics.ProviderOperational.WithLabelValues(name).Set(v)
		limited, _ := e.limiter.Limited(name)
		lv := 0.0
		if limited {
			lv = 1
		}
		metrics.ProviderRateLimited.WithLabelValues(name).Set(lv)
	}
}

// DialProbe returns a connectivity check that dials a well-known
// address. Suitable as Options.Connectivity in production; tests leave
// the probe nil.
func DialProbe(addr string, timeout time.Duration) func(context.Context) bool {
	dialer := &net.Dialer{Timeout: timeout}
	return func(ctx context.Context) bool {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// Tracker exposes the availability tracker for the status handlers.
func (e *Engine) Tracker() *health.Tracker { return e.tracker }

// Limiter exposes the rate limiter for the status handlers.
func (e *Engine) Limiter() *ratelimit.Limiter { return e.limiter }

// Registry exposes the provider registry for the status handlers.
func (e *Engine) Registry() *registry.Registry { return e.reg }
