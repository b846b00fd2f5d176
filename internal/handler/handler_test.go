package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
	"github.com/web3-frozen/protocol-dashboard/internal/summary"
)

// fakeFetcher serves canned upstream payloads and counts calls.
type fakeFetcher struct {
	breakdown  []byte
	statement  []byte
	timeseries []byte

	breakdownCalls  int
	statementCalls  int
	timeseriesCalls int
}

func (f *fakeFetcher) FetchMetricsBreakdown(_ context.Context, _ string, _ []string, _ bool) []byte {
	f.breakdownCalls++
	return f.breakdown
}

func (f *fakeFetcher) FetchFinancialStatement(_ context.Context, _, _ string, _ bool) []byte {
	f.statementCalls++
	return f.statement
}

func (f *fakeFetcher) FetchTimeSeries(_ context.Context, _, _, _ string, _ bool) []byte {
	f.timeseriesCalls++
	return f.timeseries
}

func testLoader(f *fakeFetcher) *dashboard.Loader {
	return dashboard.NewLoader(f, nil, "raydium", slog.Default())
}

func TestSnapshotHandler(t *testing.T) {
	fetcher := &fakeFetcher{
		breakdown: []byte(`{"result":{"data":{"data":[
			{"data_id":"raydium","metrics":{"revenue":{"latest":1200000,"change":0.15,"avg":900000}}}
		]}}}`),
	}
	handler := Snapshot(testLoader(fetcher))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var snap map[string]reshape.MetricSummary
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rev, ok := snap["revenue"]
	if !ok {
		t.Fatal("revenue missing from snapshot")
	}
	if rev.Latest == nil || *rev.Latest != 1200000 {
		t.Errorf("revenue latest = %v, want 1200000", rev.Latest)
	}
}

func TestSnapshotHandlerUnavailable(t *testing.T) {
	handler := Snapshot(testLoader(&fakeFetcher{}))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestTablesHandler(t *testing.T) {
	fetcher := &fakeFetcher{
		statement: []byte(`[{"result":{"data":{"data":[
			{"metric_id":"revenue","timestamp":"2024-01-15T00:00:00Z","value":100},
			{"metric_id":"user_mau","timestamp":"2024-01-15T00:00:00Z","value":5000}
		]}}}]`),
	}
	handler := Tables(testLoader(fetcher))

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Financial   reshape.TableResult `json:"financial"`
		Operational reshape.TableResult `json:"operational"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Financial.Table == nil {
		t.Fatal("financial table missing")
	}
	if got := resp.Financial.Table.Rows[0].Metric; got != "Revenue" {
		t.Errorf("financial metric = %q, want %q", got, "Revenue")
	}
	if resp.Operational.Table == nil {
		t.Fatal("operational table missing")
	}
}

func TestTablesHandlerUnavailable(t *testing.T) {
	handler := Tables(testLoader(&fakeFetcher{}))

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func timeSeriesRequest(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/api/timeseries/{metricID}", handler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTimeSeriesHandler(t *testing.T) {
	fetcher := &fakeFetcher{
		timeseries: []byte(`{"result":{"data":{"data":[
			{"metric_id":"fees","timestamp":"2024-01-02T00:00:00Z","value":20},
			{"metric_id":"fees","timestamp":"2024-01-01T00:00:00Z","value":10}
		]}}}`),
	}
	handler := TimeSeries(testLoader(fetcher))

	rec := timeSeriesRequest(t, handler, "/api/timeseries/fees")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var records []reshape.MetricRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if !records[0].Timestamp.Before(records[1].Timestamp) {
		t.Error("records not sorted ascending")
	}
}

func TestTimeSeriesHandlerWeekly(t *testing.T) {
	// Both days fall in the ISO week starting Monday 2024-01-01; fees is a
	// flow metric so the bucket sums.
	fetcher := &fakeFetcher{
		timeseries: []byte(`{"result":{"data":{"data":[
			{"metric_id":"fees","timestamp":"2024-01-01T00:00:00Z","value":10},
			{"metric_id":"fees","timestamp":"2024-01-02T00:00:00Z","value":20}
		]}}}`),
	}
	handler := TimeSeries(testLoader(fetcher))

	rec := timeSeriesRequest(t, handler, "/api/timeseries/fees?granularity=week")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var records []reshape.MetricRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Value == nil || *records[0].Value != 30 {
		t.Errorf("weekly fees = %v, want 30", records[0].Value)
	}
}

func TestTimeSeriesHandlerBadGranularity(t *testing.T) {
	handler := TimeSeries(testLoader(&fakeFetcher{}))

	rec := timeSeriesRequest(t, handler, "/api/timeseries/fees?granularity=hour")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTimeSeriesHandlerUnavailable(t *testing.T) {
	handler := TimeSeries(testLoader(&fakeFetcher{}))

	rec := timeSeriesRequest(t, handler, "/api/timeseries/fees")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSummaryHandler(t *testing.T) {
	fetcher := &fakeFetcher{
		breakdown: []byte(`{"result":{"data":{"data":[
			{"data_id":"raydium","metrics":{"revenue":{"latest":1200000,"change":0.6,"avg":900000}}}
		]}}}`),
	}
	handler := Summary(testLoader(fetcher), summary.RuleBased{})

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary == "" {
		t.Error("summary is empty")
	}
}

func TestRefreshBypassesSnapshotCache(t *testing.T) {
	if got := useCache(httptest.NewRequest(http.MethodGet, "/api/snapshot?refresh=1", nil)); got {
		t.Error("useCache(refresh=1) = true, want false")
	}
	if got := useCache(httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)); !got {
		t.Error("useCache() = false, want true")
	}
}

func TestHealthAndReady(t *testing.T) {
	rec := httptest.NewRecorder()
	Health()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", rec.Code, http.StatusOK)
	}

	// No durable store wired: always ready.
	rec = httptest.NewRecorder()
	Ready(nil)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want %d", rec.Code, http.StatusOK)
	}
}
