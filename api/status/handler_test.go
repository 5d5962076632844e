package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/passenger"
)

type fixedStats passenger.Stats

func (f fixedStats) Stats() passenger.Stats { return passenger.Stats(f) }

func TestStatsHandler(t *testing.T) {
	h := NewStatsHandler(fixedStats{Mode: "taxi", Created: 4, AwaitingPickups: 1}, "tok")

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "taxi", out["mode"])
	assert.Equal(t, 4.0, out["created"])
	assert.Equal(t, 1.0, out["awaiting_pickups"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
