// Package events exposes the passenger event log over HTTP.
package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kilianp07/drt/core/eventlog"
	"github.com/kilianp07/drt/core/model"
)

// NewEventHandler returns an HTTP handler exposing logged events via GET
// /api/events. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewEventHandler(store eventlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (eventlog.Query, error) {
	v := r.URL.Query()
	q := eventlog.Query{
		Type:      v.Get("type"),
		Mode:      v.Get("mode"),
		AgentID:   model.AgentID(v.Get("agent_id")),
		RequestID: model.RequestID(v.Get("request_id")),
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"from", &q.From}, {"to", &q.To}} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, fmt.Errorf("invalid %s: %q", p.name, s)
		}
		*p.dst = f
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit: %q", s)
		}
		q.Limit = n
	}
	return q, nil
}
