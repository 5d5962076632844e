package metrics

import (
	"fmt"

	"github.com/kilianp07/drt/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr exposes /metrics when not empty, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}

// Validate checks that every sink has a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics sink %d: type is required", i)
		}
	}
	return nil
}
