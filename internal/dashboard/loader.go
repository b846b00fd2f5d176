// Package dashboard adapts the upstream client and reshape pipeline into the
// loads the web dashboard consumes. Every load degrades to absent on failure;
// the HTTP layer renders "no data available" instead of an error page.
package dashboard

import (
	"context"
	"log/slog"

	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
	"github.com/web3-frozen/protocol-dashboard/internal/snapcache"
)

const defaultInterval = "365d"

// Fetcher is the slice of the upstream client the loader needs.
type Fetcher interface {
	FetchFinancialStatement(ctx context.Context, project, granularity string, useCache bool) []byte
	FetchMetricsBreakdown(ctx context.Context, project string, metricIDs []string, useCache bool) []byte
	FetchTimeSeries(ctx context.Context, metricID, project, interval string, useCache bool) []byte
}

// Loader loads processed metric views for one project, memoizing results in
// the snapshot cache so parallel panels share work.
type Loader struct {
	fetcher Fetcher
	snaps   *snapcache.Cache
	project string
	logger  *slog.Logger
}

func NewLoader(fetcher Fetcher, snaps *snapcache.Cache, project string, logger *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, snaps: snaps, project: project, logger: logger}
}

func (l *Loader) Project() string { return l.project }

// LoadMetricsSnapshot returns the per-metric summary map, or nil when the
// upstream is unavailable or the payload is malformed.
func (l *Loader) LoadMetricsSnapshot(ctx context.Context, useCache bool) map[string]reshape.MetricSummary {
	key := "snapshot:" + l.project
	if useCache {
		var snap map[string]reshape.MetricSummary
		if l.snaps.Get(ctx, key, &snap) {
			return snap
		}
	}

	payload := l.fetcher.FetchMetricsBreakdown(ctx, l.project, nil, useCache)
	if payload == nil {
		return nil
	}
	snap := reshape.NormalizeBreakdown(payload, l.project)
	if snap == nil {
		l.logger.Warn("breakdown payload unusable", "project", l.project)
		return nil
	}
	if useCache {
		l.snaps.Set(ctx, key, snap)
	}
	return snap
}

// financialTables is the snapshot-cache shape for the statement view.
type financialTables struct {
	Financial   reshape.TableResult `json:"financial"`
	Operational reshape.TableResult `json:"operational"`
}

// LoadFinancialTables returns the financial and operational pivot tables.
// ok is false when no renderable data could be produced.
func (l *Loader) LoadFinancialTables(ctx context.Context, useCache bool) (financial, operational reshape.TableResult, ok bool) {
	key := "tables:" + l.project
	if useCache {
		var cached financialTables
		if l.snaps.Get(ctx, key, &cached) {
			return cached.Financial, cached.Operational, true
		}
	}

	payload := l.fetcher.FetchFinancialStatement(ctx, l.project, "month", useCache)
	if payload == nil {
		return reshape.TableResult{}, reshape.TableResult{}, false
	}

	financial, operational = reshape.BuildFinancialTables(payload)
	if financial.Absent() && operational.Absent() {
		l.logger.Warn("financial statement payload unusable", "project", l.project)
		return reshape.TableResult{}, reshape.TableResult{}, false
	}
	if useCache {
		l.snaps.Set(ctx, key, financialTables{Financial: financial, Operational: operational})
	}
	return financial, operational, true
}

// LoadTimeSeries returns the normalized, ascending time series for one
// metric, or nil when unavailable.
func (l *Loader) LoadTimeSeries(ctx context.Context, metricID string, useCache bool) []reshape.MetricRecord {
	key := "timeseries:" + l.project + ":" + metricID
	if useCache {
		var records []reshape.MetricRecord
		if l.snaps.Get(ctx, key, &records) {
			return records
		}
	}

	payload := l.fetcher.FetchTimeSeries(ctx, metricID, l.project, defaultInterval, useCache)
	if payload == nil {
		return nil
	}
	records := reshape.NormalizeTimeSeries(payload)
	if records == nil {
		l.logger.Warn("time series payload unusable", "project", l.project, "metric", metricID)
		return nil
	}
	if useCache {
		l.snaps.Set(ctx, key, records)
	}
	return records
}
