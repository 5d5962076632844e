// Package metrics builds the event sinks used for observability. Sinks are
// created from configuration through a registry; infra/metrics registers
// the built-in "nop", "prometheus" and "influx" types. Several configured
// sinks are combined into an events.MultiSink.
package metrics
