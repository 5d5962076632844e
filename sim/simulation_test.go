package sim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/passenger"
)

func run(t *testing.T, path string, cfg Config) (Summary, *Simulation, *events.Recorder) {
	t.Helper()
	passenger.ResetMetrics(prometheus.NewRegistry())
	sc, err := LoadScenario(path)
	require.NoError(t, err)
	rec := &events.Recorder{}
	s, err := Build(sc, cfg, passenger.Config{}, rec, nil)
	require.NoError(t, err)
	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, sc.Expected.Check(sum))
	return sum, s, rec
}

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			run(t, f, Config{MaxWaitSeconds: 60})
		})
	}
}

func TestBasicScenarioDetails(t *testing.T) {
	sum, s, rec := run(t, "testdata/basic.yaml", Config{})

	assert.Equal(t, "taxi", sum.Mode)
	assert.Equal(t, 6, sum.Passengers)
	assert.Equal(t, 1, sum.Teleported)
	assert.Equal(t, 4, sum.Arrived)
	assert.Equal(t, map[string]int{
		passenger.CauseSameLink: 1,
		CauseUnreachable:        1,
	}, sum.Rejections)
	assert.Zero(t, sum.BookingErrors)
	assert.Zero(t, sum.StillWaiting)
	assert.Equal(t, passenger.Stats{Mode: "taxi", Created: 5}, sum.Engine)

	// the prebooked pickup completes at the departure, not at the vehicle arrival
	p1, ok := s.Agent("p1")
	require.True(t, ok)
	boarded, ok := p1.Boarded()
	require.True(t, ok)
	assert.Equal(t, 300.0, boarded)
	assert.Equal(t, 420.0, p1.ArrivalTime())

	var enters []events.PersonEntersVehicle
	for _, ev := range rec.Events() {
		if e, ok := ev.(events.PersonEntersVehicle); ok {
			enters = append(enters, e)
		}
	}
	require.Len(t, enters, 3)
	assert.Equal(t, "p1", string(enters[0].AgentID))
	assert.Equal(t, "veh_t1", string(enters[0].VehicleID))
}

func TestMaxWaitRejectsQueuedRequest(t *testing.T) {
	sum, s, _ := run(t, "testdata/max_wait.yaml", Config{MaxWaitSeconds: 60})
	assert.Equal(t, 1, sum.Rejections[CauseMaxWait])
	b, ok := s.Agent("b")
	require.True(t, ok)
	assert.Equal(t, "abort", b.State().String())
	assert.Zero(t, s.optimizer.Pending())
}

func TestRunStopsAtEndTime(t *testing.T) {
	passenger.ResetMetrics(prometheus.NewRegistry())
	sc, err := LoadScenario("testdata/basic.yaml")
	require.NoError(t, err)
	s, err := Build(sc, Config{EndTime: 350}, passenger.Config{}, nil, nil)
	require.NoError(t, err)
	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 350.0, sum.EndTime)
	assert.Equal(t, 1, sum.PickedUp)
	assert.Zero(t, sum.DroppedOff)
	assert.Equal(t, 1, sum.Engine.Tracked)
}

func TestRunHonoursContext(t *testing.T) {
	passenger.ResetMetrics(prometheus.NewRegistry())
	sc, err := LoadScenario("testdata/basic.yaml")
	require.NoError(t, err)
	s, err := Build(sc, Config{}, passenger.Config{}, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte(`name: x`))
	assert.Error(t, err)

	_, err = ParseScenario([]byte(`
network:
  links: [{id: l1, from: a, to: b}]
passengers:
  - {id: p, from: l1, from_facility: home, to: l1, departure: 10}
  - {id: q, from: l1, to: l1, departure: 10, prebook_at: 10}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passenger p")
	assert.Contains(t, err.Error(), "passenger q")
}

func TestBuildRejectsUnknownTaxiLink(t *testing.T) {
	sc, err := ParseScenario([]byte(`
network:
  links: [{id: l1, from: a, to: b}]
taxis: [{id: t, link: l7}]
`))
	require.NoError(t, err)
	_, err = Build(sc, Config{}, passenger.Config{}, nil, nil)
	assert.Error(t, err)
}
