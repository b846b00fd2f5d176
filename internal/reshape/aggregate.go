package reshape

import (
	"strings"
	"time"
)

// Granularity selects the bucket size for AggregateToPeriod.
type Granularity string

const (
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Flow metrics accumulate over a period and are summed when rolling daily
// records up; everything else is a level metric and is averaged.
var flowKeywords = []string{"volume", "fees", "revenue", "user"}

func isFlowMetric(metricID string) bool {
	id := strings.ToLower(metricID)
	for _, kw := range flowKeywords {
		if strings.Contains(id, kw) {
			return true
		}
	}
	return false
}

// bucketStart truncates a timestamp to its ISO week start (Monday, UTC) or
// its calendar month start.
func bucketStart(ts time.Time, g Granularity) time.Time {
	ts = ts.UTC()
	if g == GranularityMonth {
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	// Monday = 1 ... Sunday = 0; shift Sunday back six days.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// AggregateToPeriod reduces chronologically ordered records to one row per
// (bucket, metric_id), summing flow metrics and averaging level metrics.
// The bucket start becomes the row's timestamp. Rows with nil values do not
// contribute to the reduction; a group with no values keeps a nil value.
func AggregateToPeriod(records []MetricRecord, g Granularity) []MetricRecord {
	if len(records) == 0 {
		return nil
	}

	type groupKey struct {
		bucket   time.Time
		metricID string
	}
	type group struct {
		dataID string
		sum    float64
		n      int
	}

	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, rec := range records {
		key := groupKey{bucket: bucketStart(rec.Timestamp, g), metricID: rec.MetricID}
		grp, seen := groups[key]
		if !seen {
			grp = &group{dataID: rec.DataID}
			groups[key] = grp
			order = append(order, key)
		}
		if rec.Value != nil {
			grp.sum += *rec.Value
			grp.n++
		}
	}

	out := make([]MetricRecord, 0, len(order))
	for _, key := range order {
		grp := groups[key]
		rec := MetricRecord{
			DataID:    grp.dataID,
			MetricID:  key.metricID,
			Timestamp: key.bucket,
		}
		if grp.n > 0 {
			v := grp.sum
			if !isFlowMetric(key.metricID) {
				v = grp.sum / float64(grp.n)
			}
			rec.Value = &v
		}
		out = append(out, rec)
	}
	return out
}
