package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS financial_statements (
    id SERIAL PRIMARY KEY,
    project_slug TEXT NOT NULL,
    granularity TEXT NOT NULL,
    payload JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(project_slug, granularity)
);

CREATE TABLE IF NOT EXISTS metrics_breakdown (
    id SERIAL PRIMARY KEY,
    project_slug TEXT NOT NULL,
    payload JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(project_slug)
);

CREATE TABLE IF NOT EXISTS time_series (
    id SERIAL PRIMARY KEY,
    project_slug TEXT NOT NULL,
    metric_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(project_slug, metric_id)
);
`

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
