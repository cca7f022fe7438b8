package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the optional fetch-audit log. When no database is
// configured the engine simply runs without one; every method on a nil
// *Store is a no-op, so callers never branch.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Enabled reports whether an actual database is behind this handle.
func (s *Store) Enabled() bool { return s != nil }

// FetchRecord is one dispatched logical query and how it was served.
type FetchRecord struct {
	ID         int64     `json:"id"`
	QueryKey   string    `json:"query_key"`
	QueryType  string    `json:"query_type"`
	Source     string    `json:"source"`
	Status     string    `json:"status"` // ok | mock | cache
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordFetch appends one audit row. Failures are returned, not
// retried; losing an audit row must never fail a fetch.
func (s *Store) RecordFetch(ctx context.Context, r FetchRecord) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fetch_log (query_key, query_type, source, status, duration_ms)
		VALUES ($1, $2, $3, $4, $5)`,
		r.QueryKey, r.QueryType, r.Source, r.Status, r.DurationMS)
	return err
}

// RecentFetches returns the newest audit rows, newest first.
func (s *Store) RecentFetches(ctx context.Context, limit int) ([]FetchRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, query_key, query_type, source, status, duration_ms, created_at
		FROM fetch_log
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FetchRecord
	for rows.Next() {
		var r FetchRecord
		if err := rows.Scan(&r.ID, &r.QueryKey, &r.QueryType, &r.Source, &r.Status, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SourceCounts aggregates how often each source served data within the
// window. Feeds the status endpoint's "who is actually serving" view.
func (s *Store) SourceCounts(ctx context.Context, window time.Duration) (map[string]int64, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT source, COUNT(*)
		FROM fetch_log
		WHERE created_at > $1
		GROUP BY source`, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

// CleanupOldFetches deletes audit rows older than maxAge.
func (s *Store) CleanupOldFetches(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM fetch_log WHERE created_at < $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
