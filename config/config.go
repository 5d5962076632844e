package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/drt/core/metrics"
	"github.com/kilianp07/drt/core/passenger"
	"github.com/kilianp07/drt/infra/eventlog"
	"github.com/kilianp07/drt/infra/kpi"
	"github.com/kilianp07/drt/infra/logger"
	"github.com/kilianp07/drt/infra/mqtt"
	"github.com/kilianp07/drt/infra/stream"
	"github.com/kilianp07/drt/sim"
)

type Config struct {
	Engine     passenger.Config `json:"engine"`
	Simulation sim.Config       `json:"simulation"`
	EventLog   eventlog.Config  `json:"event_log"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Redis      stream.Config    `json:"redis"`
	Sentry     SentryConfig     `json:"sentry"`
	Logging    logger.Config    `json:"logging"`
	API        APIConfig        `json:"api"`
	KPI        kpi.Config       `json:"kpi"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides, then
// defaults and validation. An empty path only uses the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides, K_MQTT__BROKER sets mqtt.broker.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	c.Simulation.SetDefaults()
	c.EventLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Redis.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	sections := []struct {
		name string
		err  error
	}{
		{"engine", c.Engine.Validate()},
		{"simulation", c.Simulation.Validate()},
		{"event_log", c.EventLog.Validate()},
		{"metrics", c.Metrics.Validate()},
		{"mqtt", c.MQTT.Validate()},
		{"redis", c.Redis.Validate()},
		{"logging", c.Logging.Validate()},
	}
	var errs []error
	for _, s := range sections {
		if s.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, s.err))
		}
	}
	return errors.Join(errs...)
}
