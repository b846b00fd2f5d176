package reshape

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Upstream responses wrap everything in a result.data envelope; batched
// requests additionally wrap that in a single-element array.
type envelope struct {
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

// unwrap peels the (optionally batched) result.data envelope off a payload.
func unwrap(payload []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, false
	}

	if trimmed[0] == '[' {
		var batch []envelope
		if err := json.Unmarshal(trimmed, &batch); err != nil || len(batch) == 0 {
			return nil, false
		}
		if len(batch[0].Result.Data) == 0 {
			return nil, false
		}
		return batch[0].Result.Data, true
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Result.Data) == 0 {
		return nil, false
	}
	return env.Result.Data, true
}

// NormalizeBreakdown locates the per-project section whose data_id matches
// project and returns its metrics map verbatim. Nil when the payload is
// malformed or the project section is absent.
func NormalizeBreakdown(payload []byte, project string) map[string]MetricSummary {
	data, ok := unwrap(payload)
	if !ok {
		return nil
	}

	var inner struct {
		Data []struct {
			DataID  string                   `json:"data_id"`
			Metrics map[string]MetricSummary `json:"metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil
	}

	for _, section := range inner.Data {
		if section.DataID == project {
			return section.Metrics
		}
	}
	return nil
}

// rawRecord is the wire shape of one time-series row; the timestamp arrives
// as a string in one of a few layouts.
type rawRecord struct {
	DataID    string   `json:"data_id"`
	MetricID  string   `json:"metric_id"`
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeTimeSeries flattens the nested result list into MetricRecords,
// sorted ascending by timestamp. Rows with unparseable timestamps are
// dropped; a malformed or empty payload yields nil.
func NormalizeTimeSeries(payload []byte) []MetricRecord {
	data, ok := unwrap(payload)
	if !ok {
		return nil
	}

	var inner struct {
		Data []rawRecord `json:"data"`
	}
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil
	}

	records := make([]MetricRecord, 0, len(inner.Data))
	for _, raw := range inner.Data {
		ts, ok := parseTimestamp(raw.Timestamp)
		if !ok {
			continue
		}
		records = append(records, MetricRecord{
			DataID:    raw.DataID,
			MetricID:  raw.MetricID,
			Timestamp: ts,
			Value:     raw.Value,
		})
	}
	if len(records) == 0 {
		return nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}
