package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
	"github.com/web3-frozen/protocol-dashboard/internal/summary"
)

func Summary(loader *dashboard.Loader, gen summary.Generator) http.HandlerFunc {
	type response struct {
		Summary string `json:"summary"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		snap := loader.LoadMetricsSnapshot(r.Context(), useCache(r))
		if snap == nil {
			http.Error(w, `{"error":"no data available yet"}`, http.StatusServiceUnavailable)
			return
		}

		text, err := gen.Summarize(r.Context(), snap)
		if err != nil {
			http.Error(w, `{"error":"failed to generate summary"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{Summary: text})
	}
}
