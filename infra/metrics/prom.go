package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/drt/core/events"
)

// PromSink counts passenger notifications in Prometheus metrics.
type PromSink struct {
	events  *prometheus.CounterVec
	causes  *prometheus.CounterVec
	simTime prometheus.Gauge
}

// NewPromSink registers notification metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	evs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_events_total",
		Help: "Passenger notifications by type",
	}, []string{"type"})
	causes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "passenger_rejections_by_cause_total",
		Help: "Rejected requests by rejection cause",
	}, []string{"mode", "cause"})
	simTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "passenger_last_event_sim_seconds",
		Help: "Simulation time of the latest notification",
	})

	var err error
	if evs, err = registerOrExisting(reg, evs); err != nil {
		return nil, err
	}
	if causes, err = registerOrExisting(reg, causes); err != nil {
		return nil, err
	}
	if simTime, err = registerOrExisting(reg, simTime); err != nil {
		return nil, err
	}
	return &PromSink{events: evs, causes: causes, simTime: simTime}, nil
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C), nil
		}
		return c, err
	}
	return c, nil
}

// ProcessEvent increments the counters for ev.
func (s *PromSink) ProcessEvent(ev events.Event) {
	s.events.WithLabelValues(ev.Type()).Inc()
	s.simTime.Set(ev.SimTime())
	if rej, ok := ev.(events.RequestRejected); ok {
		s.causes.WithLabelValues(rej.Mode, rej.Cause).Inc()
	}
}
