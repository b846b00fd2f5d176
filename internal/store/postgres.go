package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the durable CacheStore implementation. Each query kind lives in
// its own table; freshness is evaluated against the database clock so that
// created_at (written by the database) and the read comparison never disagree.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Postgres, error) {
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

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() { s.pool.Close() }

func (s *Postgres) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Postgres) Get(ctx context.Context, kind Kind, key Key, window time.Duration) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	secs := window.Seconds()

	switch kind {
	case KindFinancialStatement:
		err = s.pool.QueryRow(ctx, `
			SELECT payload FROM financial_statements
			WHERE project_slug = $1 AND granularity = $2
			  AND created_at > now() - make_interval(secs => $3)`,
			key.ProjectSlug, key.Granularity, secs).Scan(&payload)
	case KindMetricsBreakdown:
		err = s.pool.QueryRow(ctx, `
			SELECT payload FROM metrics_breakdown
			WHERE project_slug = $1
			  AND created_at > now() - make_interval(secs => $2)`,
			key.ProjectSlug, secs).Scan(&payload)
	case KindTimeSeries:
		err = s.pool.QueryRow(ctx, `
			SELECT payload FROM time_series
			WHERE project_slug = $1 AND metric_id = $2
			  AND created_at > now() - make_interval(secs => $3)`,
			key.ProjectSlug, key.MetricID, secs).Scan(&payload)
	default:
		return nil, fmt.Errorf("unknown cache kind %d", kind)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", kind, err)
	}
	return payload, nil
}

func (s *Postgres) Put(ctx context.Context, kind Kind, key Key, payload []byte) error {
	var err error

	switch kind {
	case KindFinancialStatement:
		_, err = s.pool.Exec(ctx, `
			INSERT INTO financial_statements (project_slug, granularity, payload, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (project_slug, granularity) DO UPDATE
				SET payload = $3, created_at = now()`,
			key.ProjectSlug, key.Granularity, payload)
	case KindMetricsBreakdown:
		_, err = s.pool.Exec(ctx, `
			INSERT INTO metrics_breakdown (project_slug, payload, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT (project_slug) DO UPDATE
				SET payload = $2, created_at = now()`,
			key.ProjectSlug, payload)
	case KindTimeSeries:
		_, err = s.pool.Exec(ctx, `
			INSERT INTO time_series (project_slug, metric_id, payload, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (project_slug, metric_id) DO UPDATE
				SET payload = $3, created_at = now()`,
			key.ProjectSlug, key.MetricID, payload)
	default:
		return fmt.Errorf("unknown cache kind %d", kind)
	}

	if err != nil {
		return fmt.Errorf("cache put %s: %w", kind, err)
	}
	return nil
}
