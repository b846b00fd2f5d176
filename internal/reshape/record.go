// Package reshape turns raw Token Terminal payloads into flat records,
// summary maps, pivot tables, and period aggregates. Every transform is
// tolerant of malformed input: structurally unexpected payloads come back as
// absent (nil) or as an explicitly degraded result, never as a panic.
package reshape

import "time"

// MetricRecord is the atomic unit of a normalized time series. Value is a
// pointer because upstream rows may carry null for gaps in the series.
type MetricRecord struct {
	DataID    string    `json:"data_id"`
	MetricID  string    `json:"metric_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

// MetricSummary is the per-metric summary shape the breakdown endpoint ships:
// latest value, 30d change as a fraction (0.15 = +15%), and period average.
type MetricSummary struct {
	Latest *float64 `json:"latest"`
	Change *float64 `json:"change"`
	Avg    *float64 `json:"avg"`
}

// PivotTable is a metric × period table. Periods are ordered most recent
// first; rows keep the order in which metrics first appeared in the source.
type PivotTable struct {
	Periods []string   `json:"periods"`
	Rows    []PivotRow `json:"rows"`
}

type PivotRow struct {
	Metric string   `json:"metric"`
	Cells  []string `json:"cells"`
}

// TableResult is the outcome of building one pivot table. When the payload
// does not carry the columns needed to pivot, Degraded is set and Raw holds
// the flattened rows unchanged so the caller can still render something.
type TableResult struct {
	Degraded bool             `json:"degraded"`
	Table    *PivotTable      `json:"table,omitempty"`
	Raw      []map[string]any `json:"raw,omitempty"`
}

// Absent reports whether the result carries no renderable data at all.
func (r TableResult) Absent() bool {
	return r.Table == nil && len(r.Raw) == 0
}
