// Package refresher keeps the cache warm: it re-runs the dashboard loads on
// a fixed interval so panels rarely block on a cold upstream fetch.
package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

// Loader is the slice of the dashboard adapter the refresher drives.
type Loader interface {
	LoadMetricsSnapshot(ctx context.Context, useCache bool) map[string]reshape.MetricSummary
	LoadFinancialTables(ctx context.Context, useCache bool) (reshape.TableResult, reshape.TableResult, bool)
	LoadTimeSeries(ctx context.Context, metricID string, useCache bool) []reshape.MetricRecord
}

// DefaultChartMetrics are the series warmed for the dashboard's default
// chart selection.
var DefaultChartMetrics = []string{"fees", "revenue", "trading_volume", "user_mau"}

type Refresher struct {
	loader   Loader
	metrics  []string
	interval time.Duration
	logger   *slog.Logger
}

func New(loader Loader, chartMetrics []string, interval time.Duration, logger *slog.Logger) *Refresher {
	if chartMetrics == nil {
		chartMetrics = DefaultChartMetrics
	}
	return &Refresher{loader: loader, metrics: chartMetrics, interval: interval, logger: logger}
}

// Run blocks until ctx is done, refreshing once immediately and then every
// interval. Loads go through the cache, so a refresh only hits the upstream
// once entries have gone stale.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()

	ok := 0
	if snap := r.loader.LoadMetricsSnapshot(ctx, true); snap != nil {
		ok++
	}
	if _, _, loaded := r.loader.LoadFinancialTables(ctx, true); loaded {
		ok++
	}
	for _, metric := range r.metrics {
		if records := r.loader.LoadTimeSeries(ctx, metric, true); records != nil {
			ok++
		}
	}

	r.logger.Info("cache refresh",
		"loaded", ok,
		"total", 2+len(r.metrics),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
}
