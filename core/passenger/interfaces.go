package passenger

import "github.com/kilianp07/drt/core/model"

// PassengerAgent is the simulation handle of a traveller.
type PassengerAgent interface {
	ID() model.AgentID
	Mode() string
	State() model.AgentState
	CurrentLink() model.LinkID
	DestinationLink() model.LinkID
	SetVehicle(v Vehicle)
	NotifyArrivalOnLinkByNonNetworkMode(link model.LinkID)
	EndLegAndComputeNextState(now float64)
}

// Vehicle is a fleet vehicle able to carry passengers.
type Vehicle interface {
	ID() model.VehicleID
	AddPassenger(p PassengerAgent)
	RemovePassenger(p PassengerAgent)
}

// Driver controls a Vehicle.
type Driver interface {
	ID() model.AgentID
	CurrentLink() model.LinkID
	Vehicle() Vehicle
}

// PickupStop is the vehicle-side task waiting at a pickup link. It is told
// once the passenger is on board when the pickup completed after the
// vehicle arrived.
type PickupStop interface {
	PassengerPickedUp(req *model.Request, now float64)
}

// Optimizer assigns vehicles to requests. It may reject a request during
// Submit by calling req.Reject. Submit must not call back into the Engine.
type Optimizer interface {
	Submit(req *model.Request)
}

// Validator returns the reasons a request cannot be served. An empty result
// means the request is valid.
type Validator interface {
	Validate(req *model.Request) []string
}

// RequestCreator builds requests. It allows modes to attach their own data.
type RequestCreator interface {
	CreateRequest(id model.RequestID, passenger PassengerAgent, from, to model.LinkID, departure, now float64) *model.Request
}

// Network resolves facilities to links.
type Network interface {
	DecideOnLink(f model.Facility) (model.LinkID, bool)
}

// Simulation is the part of the surrounding mobsim the engine drives.
type Simulation interface {
	// RegisterAgentOnLink keeps a waiting agent alive on link.
	RegisterAgentOnLink(agent PassengerAgent, link model.LinkID)
	// UnregisterAgentOnLink removes a waiting agent. It returns false if the
	// agent was not registered on that link.
	UnregisterAgentOnLink(id model.AgentID, link model.LinkID) bool
	// ArrangeNextAgentState schedules what the agent does next.
	ArrangeNextAgentState(agent PassengerAgent)
}
