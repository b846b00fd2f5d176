package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
)

// useCache reads the refresh query parameter. refresh=1 forces a pass
// through to the upstream API, skipping the durable cache.
func useCache(r *http.Request) bool {
	return r.URL.Query().Get("refresh") != "1"
}

func Snapshot(loader *dashboard.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := loader.LoadMetricsSnapshot(r.Context(), useCache(r))
		if snap == nil {
			http.Error(w, `{"error":"no data available yet"}`, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
