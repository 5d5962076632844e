package model

// AgentID identifies a simulated person or driver.
type AgentID string

// LinkID identifies a network link. Agents and vehicles are always located
// on a link.
type LinkID string

// VehicleID identifies a vehicle of the fleet.
type VehicleID string

// AgentState is the simulation state of an agent.
type AgentState int

const (
	// StateActivity means the agent is performing an activity.
	StateActivity AgentState = iota
	// StateLeg means the agent is travelling, which includes waiting to be
	// picked up.
	StateLeg
	// StateAbort means the agent is stuck and removed from the simulation.
	StateAbort
)

// String returns a human-readable representation of the state.
func (s AgentState) String() string {
	switch s {
	case StateActivity:
		return "activity"
	case StateLeg:
		return "leg"
	case StateAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Facility is a place agents travel from or to. It is attached to a link
// directly or located by coordinates.
type Facility struct {
	ID     string  `json:"id" yaml:"id"`
	LinkID LinkID  `json:"link_id,omitempty" yaml:"link_id,omitempty"`
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
}
