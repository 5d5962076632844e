package config

// APIConfig configures the HTTP server exposing the event log.
type APIConfig struct {
	// Addr is the listen address. Empty disables the server.
	Addr string `json:"addr"`
	// Token is required as a bearer token when set.
	Token string `json:"token"`
	// Path is the route of the event query endpoint.
	Path string `json:"path"`
}

// SetDefaults applies default values.
func (c *APIConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "/api/events"
	}
}
