// Package status exposes live engine counters over HTTP.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/drt/core/passenger"
)

// StatsSource returns a consistent snapshot of the engine state.
type StatsSource interface {
	Stats() passenger.Stats
}

// NewStatsHandler returns an HTTP handler exposing the engine counters via
// GET /api/status. The token check matches the event endpoint.
func NewStatsHandler(src StatsSource, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Stats()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
