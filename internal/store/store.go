package store

import (
	"context"
	"errors"
	"time"
)

// DefaultFreshness is how long a cached payload is served before the row is
// treated as a miss and the upstream is queried again.
const DefaultFreshness = time.Hour

// ErrMiss is returned by Get when no row exists for the key, or when the row
// exists but is older than the freshness window.
var ErrMiss = errors.New("cache miss")

// Kind identifies one of the cached upstream query kinds. Each kind has its
// own table and its own set of identifying columns, so a key built for one
// kind can never be read through another.
type Kind int

const (
	KindFinancialStatement Kind = iota
	KindMetricsBreakdown
	KindTimeSeries
)

func (k Kind) String() string {
	switch k {
	case KindFinancialStatement:
		return "financial_statements"
	case KindMetricsBreakdown:
		return "metrics_breakdown"
	case KindTimeSeries:
		return "time_series"
	}
	return "unknown"
}

// Key holds the identifying parameters of a cached query. Which fields are
// significant depends on the Kind:
//
//	KindFinancialStatement: ProjectSlug, Granularity
//	KindMetricsBreakdown:   ProjectSlug
//	KindTimeSeries:         ProjectSlug, MetricID
type Key struct {
	ProjectSlug string
	Granularity string
	MetricID    string
}

// CacheStore is a durable payload cache with freshness-gated reads.
// Writes are last-writer-wins per (kind, key) and atomic at the row level.
type CacheStore interface {
	// Get returns the payload stored for (kind, key) if it was written less
	// than window ago, ErrMiss if it is absent or stale, and any other error
	// on storage failure.
	Get(ctx context.Context, kind Kind, key Key, window time.Duration) ([]byte, error)

	// Put upserts the payload for (kind, key), refreshing its creation time.
	Put(ctx context.Context, kind Kind, key Key, payload []byte) error
}
