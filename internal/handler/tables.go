package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
	"github.com/web3-frozen/protocol-dashboard/internal/reshape"
)

func Tables(loader *dashboard.Loader) http.HandlerFunc {
	type response struct {
		Financial   reshape.TableResult `json:"financial"`
		Operational reshape.TableResult `json:"operational"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		financial, operational, ok := loader.LoadFinancialTables(r.Context(), useCache(r))
		if !ok {
			http.Error(w, `{"error":"no data available yet"}`, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{Financial: financial, Operational: operational})
	}
}
