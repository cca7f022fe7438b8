package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS fetch_log (
    id BIGSERIAL PRIMARY KEY,
    query_key TEXT NOT NULL,
    query_type TEXT NOT NULL,
    source TEXT NOT NULL,
    status TEXT NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS fetch_log_created_at_idx ON fetch_log (created_at);
CREATE INDEX IF NOT EXISTS fetch_log_source_idx ON fetch_log (source);
`

func (s *Store) Migrate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
