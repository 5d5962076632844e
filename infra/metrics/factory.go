package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/factory"
	coremetrics "github.com/kilianp07/drt/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (events.Sink, error) {
		return events.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (events.Sink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (events.Sink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c)
	})
}
