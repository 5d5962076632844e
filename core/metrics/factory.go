package metrics

import (
	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/factory"
)

var sinkRegistry = factory.NewRegistry[events.Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[events.Sink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Types() }

// NewSink creates an events.Sink from the provided configuration.
func NewSink(cfgs []factory.ModuleConfig) (events.Sink, error) {
	if len(cfgs) == 0 {
		return events.NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]events.Sink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return events.NewMultiSink(sinks...), nil
}
