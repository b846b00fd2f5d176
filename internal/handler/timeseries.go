package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

func TimeSeries(loader *dashboard.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricID := chi.URLParam(r, "metricID")
		if metricID == "" {
			http.Error(w, `{"error":"metric id required"}`, http.StatusBadRequest)
			return
		}

		granularity := r.URL.Query().Get("granularity")
		if granularity == "" {
			granularity = "day"
		}
		switch granularity {
		case "day", string(reshape.GranularityWeek), string(reshape.GranularityMonth):
		default:
			http.Error(w, `{"error":"granularity must be day, week or month"}`, http.StatusBadRequest)
			return
		}

		records := loader.LoadTimeSeries(r.Context(), metricID, useCache(r))
		if records == nil {
			http.Error(w, `{"error":"no data available yet"}`, http.StatusServiceUnavailable)
			return
		}

		if granularity != "day" {
			records = reshape.AggregateToPeriod(records, reshape.Granularity(granularity))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}
