package reshape

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Metric-id partitions for the financial statement view. Records matching
// neither set are dropped from both tables.
var (
	financialMetrics = map[string]bool{
		"trading_volume":           true,
		"fees":                     true,
		"fees_supply_side":         true,
		"revenue":                  true,
		"market_cap_circulating":   true,
		"market_cap_fully_diluted": true,
		"price":                    true,
		"token_trading_volume":     true,
	}

	operationalMetrics = map[string]bool{
		"active_developers":            true,
		"code_commits":                 true,
		"user_dau":                     true,
		"user_mau":                     true,
		"user_wau":                     true,
		"token_supply_circulating":     true,
		"token_turnover_circulating":   true,
		"token_turnover_fully_diluted": true,
		"pf_circulating":               true,
		"pf_fully_diluted":             true,
		"ps_circulating":               true,
		"ps_fully_diluted":             true,
	}
)

// BuildFinancialTables pivots a financial-statement payload into two
// metric × month tables, one for financial metrics (currency-prefixed) and
// one for operational metrics. When the payload rows lack the metric_id /
// timestamp / value columns the result degrades to the flattened raw rows
// with Degraded set, so callers can tell a raw grid from a real pivot.
func BuildFinancialTables(payload []byte) (financial, operational TableResult) {
	rows, ok := flattenRows(payload)
	if !ok {
		return TableResult{}, TableResult{}
	}

	records := recordsFromRows(rows)
	if len(records) == 0 {
		degraded := TableResult{Degraded: true, Raw: rows}
		return degraded, degraded
	}

	var finRecs, opRecs []MetricRecord
	for _, rec := range records {
		switch {
		case financialMetrics[rec.MetricID]:
			finRecs = append(finRecs, rec)
		case operationalMetrics[rec.MetricID]:
			opRecs = append(opRecs, rec)
		}
	}

	return TableResult{Table: buildPivot(finRecs, "$")},
		TableResult{Table: buildPivot(opRecs, "")}
}

// flattenRows peels the envelope and returns the row list as generic maps.
// Handles both `result.data = [rows]` and `result.data.data = [rows]`.
func flattenRows(payload []byte) ([]map[string]any, bool) {
	data, ok := unwrap(payload)
	if !ok {
		return nil, false
	}

	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] != '[' {
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &inner); err != nil || len(inner.Data) == 0 {
			return nil, false
		}
		raw = bytes.TrimSpace(inner.Data)
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return nil, false
	}
	return rows, true
}

// recordsFromRows extracts well-formed MetricRecords; rows missing the
// expected columns are skipped.
func recordsFromRows(rows []map[string]any) []MetricRecord {
	var records []MetricRecord
	for _, row := range rows {
		metricID, _ := row["metric_id"].(string)
		tsStr, _ := row["timestamp"].(string)
		if metricID == "" || tsStr == "" {
			continue
		}
		ts, ok := parseTimestamp(tsStr)
		if !ok {
			continue
		}
		if _, present := row["value"]; !present {
			continue
		}

		var value *float64
		if v, isNum := row["value"].(float64); isNum {
			value = &v
		}
		dataID, _ := row["data_id"].(string)
		records = append(records, MetricRecord{
			DataID:    dataID,
			MetricID:  metricID,
			Timestamp: ts,
			Value:     value,
		})
	}
	return records
}

func buildPivot(records []MetricRecord, prefix string) *PivotTable {
	if len(records) == 0 {
		return &PivotTable{}
	}

	type agg struct {
		sum float64
		n   int
	}

	values := make(map[string]map[time.Time]*agg)
	periodSet := make(map[time.Time]bool)
	var metricOrder []string

	for _, rec := range records {
		month := time.Date(rec.Timestamp.Year(), rec.Timestamp.Month(), 1, 0, 0, 0, 0, time.UTC)
		periodSet[month] = true

		byPeriod, seen := values[rec.MetricID]
		if !seen {
			byPeriod = make(map[time.Time]*agg)
			values[rec.MetricID] = byPeriod
			metricOrder = append(metricOrder, rec.MetricID)
		}
		if rec.Value == nil {
			continue
		}
		a := byPeriod[month]
		if a == nil {
			a = &agg{}
			byPeriod[month] = a
		}
		a.sum += *rec.Value
		a.n++
	}

	// Most recent period first.
	periods := make([]time.Time, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].After(periods[j]) })

	mean := func(metric string, period time.Time) *float64 {
		a := values[metric][period]
		if a == nil || a.n == 0 {
			return nil
		}
		m := a.sum / float64(a.n)
		return &m
	}

	table := &PivotTable{Periods: make([]string, len(periods))}
	for i, p := range periods {
		table.Periods[i] = p.Format("Jan 2006")
	}

	for _, metric := range metricOrder {
		row := PivotRow{Metric: DisplayName(metric), Cells: make([]string, len(periods))}
		for i, p := range periods {
			row.Cells[i] = formatCell(mean(metric, p), prevMean(mean, metric, periods, i), prefix)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// prevMean returns the mean for the chronologically older adjacent period,
// or nil at the end of the series.
func prevMean(mean func(string, time.Time) *float64, metric string, periods []time.Time, i int) *float64 {
	if i+1 >= len(periods) {
		return nil
	}
	return mean(metric, periods[i+1])
}

// formatCell renders a magnitude plus the change versus the previous period.
// With no previous period, or a zero/absent previous value, the cell carries
// the magnitude only.
func formatCell(v, prev *float64, prefix string) string {
	magnitude := FormatNumber(v, prefix)
	if v == nil || prev == nil || *prev == 0 {
		return magnitude
	}

	frac := (*v - *prev) / *prev
	indicator := "→"
	if frac > 0 {
		indicator = "▲"
	} else if frac < 0 {
		indicator = "▼"
	}
	return magnitude + " (" + FormatPercentage(&frac) + " " + indicator + ")"
}
