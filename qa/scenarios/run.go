// Package scenarios runs the YAML scenarios of this directory as a
// regression suite for the passenger engine.
package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/passenger"
	"github.com/kilianp07/drt/infra/logger"
	"github.com/kilianp07/drt/infra/metrics"
	"github.com/kilianp07/drt/sim"
)

// RunScenario runs sc with a Prometheus sink on a private registry, checks
// the expected outcome and that the exported counters agree with the run
// summary.
func RunScenario(t *testing.T, sc *sim.Scenario) sim.Summary {
	t.Helper()
	passenger.ResetMetrics(prometheus.NewRegistry())
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	s, err := sim.Build(sc, sim.Config{}, passenger.Config{}, sink, logger.NopLogger{})
	if err != nil {
		t.Fatalf("build %s: %v", sc.Name, err)
	}
	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run %s: %v", sc.Name, err)
	}
	if err := sc.Expected.Check(sum); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}

	counts := eventCounts(t, reg)
	for typ, want := range map[string]int{
		events.TypePersonEntersVehicle: sum.PickedUp,
		events.TypePersonLeavesVehicle: sum.DroppedOff,
		events.TypeRequestRejected:     sum.Rejected,
	} {
		if got := counts[typ]; got != want {
			t.Errorf("scenario %s: %s exported %d, summary has %d", sc.Name, typ, got, want)
		}
	}
	if len(s.Waiting()) != sum.StillWaiting {
		t.Errorf("scenario %s: %d agents waiting, summary has %d", sc.Name, len(s.Waiting()), sum.StillWaiting)
	}
	return sum
}

func eventCounts(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]int)
	for _, mf := range mfs {
		if mf.GetName() != "passenger_events_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "type" {
					out[l.GetValue()] = int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return out
}
