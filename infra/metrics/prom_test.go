package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/events"
)

func TestPromSink_ProcessEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	sink.ProcessEvent(events.RequestRejected{Time: 10, Mode: "drt", Cause: "no_vehicle"})
	sink.ProcessEvent(events.PersonStuck{Time: 10, Mode: "drt"})
	sink.ProcessEvent(events.PersonEntersVehicle{Time: 42})

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.events.WithLabelValues(events.TypeRequestRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.events.WithLabelValues(events.TypePersonStuck)))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.causes.WithLabelValues("drt", "no_vehicle")))
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.simTime))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	a.ProcessEvent(events.PersonStuck{})
	b.ProcessEvent(events.PersonStuck{})
	assert.Equal(t, 2.0, testutil.ToFloat64(b.events.WithLabelValues(events.TypePersonStuck)))
}
