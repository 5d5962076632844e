package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/events"
)

func TestInfluxSink_ProcessEvent(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink, err := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket", Epoch: "2024-05-01T00:00:00Z"})
	require.NoError(t, err)
	defer sink.Close()

	sink.ProcessEvent(events.RequestRejected{Time: 90, Mode: "drt", RequestID: "drt_3", Cause: "no_vehicle"})

	epoch := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := write.NewPointWithMeasurement("passenger_event").
		AddTag("type", events.TypeRequestRejected).
		AddTag("mode", "drt").
		AddTag("cause", "no_vehicle").
		AddField("sim_time", 90.0).
		AddField("request_id", "drt_3").
		SetTime(epoch.Add(90 * time.Second))
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Equal(t, expected, bodies[0])
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink, err := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL, Token: "tok", Org: "org", Bucket: "bucket"})
	require.NoError(t, err)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	assert.True(t, called, "health endpoint not called")
}

func TestInfluxSinkBadEpoch(t *testing.T) {
	_, err := NewInfluxSink(InfluxConfig{URL: "http://localhost", Epoch: "yesterday"})
	assert.Error(t, err)
}
