package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/web3-frozen/protocol-dashboard/internal/metrics"
	"github.com/web3-frozen/protocol-dashboard/internal/store"
)

// CacheStore is the slice of the durable cache this client needs.
type CacheStore interface {
	Get(ctx context.Context, kind store.Kind, key store.Key, window time.Duration) ([]byte, error)
	Put(ctx context.Context, kind store.Kind, key store.Key, payload []byte) error
}

// DefaultBreakdownMetrics is the full metric-id set requested from the
// breakdown endpoint when the caller does not narrow it.
var DefaultBreakdownMetrics = []string{
	"trading_volume", "market_cap_fully_diluted", "token_trading_volume",
	"fees", "revenue", "user_mau", "market_cap_circulating", "tvl",
	"pf_fully_diluted", "pf_circulating", "ps_fully_diluted", "ps_circulating",
	"user_dau", "user_wau", "active_developers", "code_commits", "afpu", "arpu",
	"active_addresses_daily", "active_addresses_monthly", "active_addresses_weekly",
	"fees_supply_side", "gas_used", "liquidity_turnover", "price",
	"token_supply_circulating", "token_turnover_circulating",
	"token_turnover_fully_diluted", "trading_volume_avg_per_user",
	"transaction_count_contracts",
}

// FetchFinancialStatement returns the raw financial-statement payload for a
// project, read through the cache when useCache is set. Nil means no data.
func (c *Client) FetchFinancialStatement(ctx context.Context, project, granularity string, useCache bool) []byte {
	kind := store.KindFinancialStatement
	key := store.Key{ProjectSlug: project, Granularity: granularity}

	if payload := c.cached(ctx, kind, key, useCache); payload != nil {
		return payload
	}

	input, _ := json.Marshal(map[string]any{
		"0": struct {
			ProjectSlug string `json:"project_slug"`
			Granularity string `json:"granularity"`
		}{project, granularity},
	})
	q := url.Values{}
	q.Set("batch", "1")
	q.Set("input", string(input))
	fullURL := c.baseURL + "/projects.getFinancialStatement?" + q.Encode()

	payload := c.request(ctx, kind.String(), http.MethodGet, fullURL, nil)
	c.writeThrough(ctx, kind, key, payload, useCache)
	return payload
}

// FetchMetricsBreakdown returns the raw breakdown payload for a project.
// A nil metricIDs slice requests DefaultBreakdownMetrics.
func (c *Client) FetchMetricsBreakdown(ctx context.Context, project string, metricIDs []string, useCache bool) []byte {
	kind := store.KindMetricsBreakdown
	key := store.Key{ProjectSlug: project}

	if payload := c.cached(ctx, kind, key, useCache); payload != nil {
		return payload
	}

	if metricIDs == nil {
		metricIDs = DefaultBreakdownMetrics
	}
	body, _ := json.Marshal(map[string]any{
		"data_ids":         []string{project},
		"metric_ids":       metricIDs,
		"interval":         "365d",
		"groupBy":          "chain-project",
		"ignore_threshold": false,
	})

	payload := c.request(ctx, kind.String(), http.MethodPost, c.baseURL+"/metrics.postBreakdown", body)
	c.writeThrough(ctx, kind, key, payload, useCache)
	return payload
}

// FetchTimeSeries returns the raw time-series payload for one metric.
func (c *Client) FetchTimeSeries(ctx context.Context, metricID, project, interval string, useCache bool) []byte {
	kind := store.KindTimeSeries
	key := store.Key{ProjectSlug: project, MetricID: metricID}

	if payload := c.cached(ctx, kind, key, useCache); payload != nil {
		return payload
	}

	body, _ := json.Marshal(map[string]any{
		"data_ids":   []string{project},
		"metric_ids": []string{metricID},
		"interval":   interval,
		"groupBy":    "projects",
	})

	payload := c.request(ctx, kind.String(), http.MethodPost, c.baseURL+"/metrics.postTimeseries", body)
	c.writeThrough(ctx, kind, key, payload, useCache)
	return payload
}

// cached attempts a freshness-gated read. Storage errors degrade to a miss so
// a broken cache never blocks an upstream fetch.
func (c *Client) cached(ctx context.Context, kind store.Kind, key store.Key, useCache bool) []byte {
	if !useCache || c.cache == nil {
		return nil
	}
	payload, err := c.cache.Get(ctx, kind, key, c.freshness)
	switch {
	case err == nil:
		metrics.CacheRequestsTotal.WithLabelValues(kind.String(), "hit").Inc()
		return payload
	case errors.Is(err, store.ErrMiss):
		metrics.CacheRequestsTotal.WithLabelValues(kind.String(), "miss").Inc()
	default:
		c.logger.Warn("cache read failed, falling through to upstream", "query", kind.String(), "error", err)
		metrics.CacheRequestsTotal.WithLabelValues(kind.String(), "error").Inc()
	}
	return nil
}

// writeThrough stores a fetched payload. Write failures are logged and
// swallowed: a fetch that succeeded upstream is always returned to the caller.
func (c *Client) writeThrough(ctx context.Context, kind store.Kind, key store.Key, payload []byte, useCache bool) {
	if !useCache || c.cache == nil || payload == nil {
		return
	}
	if err := c.cache.Put(ctx, kind, key, payload); err != nil {
		c.logger.Warn("cache write failed", "query", kind.String(), "error", err)
		metrics.CacheWriteFailuresTotal.WithLabelValues(kind.String()).Inc()
	}
}
