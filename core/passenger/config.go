package passenger

import "fmt"

// Config defines passenger engine settings.
type Config struct {
	// Mode is the leg mode this engine serves, e.g. "taxi" or "drt".
	Mode string `json:"mode"`
	// EmitSubmitted additionally emits a RequestSubmitted event for every
	// request handed to the optimizer.
	EmitSubmitted bool `json:"emit_submitted"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "drt"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Mode == "" {
		return fmt.Errorf("engine mode is required")
	}
	return nil
}
