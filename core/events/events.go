package events

import "github.com/kilianp07/drt/core/model"

// Type names used when events are serialised.
const (
	TypeRequestSubmitted    = "PassengerRequestSubmitted"
	TypeRequestRejected     = "PassengerRequestRejected"
	TypePersonStuck         = "PersonStuck"
	TypePersonEntersVehicle = "PersonEntersVehicle"
	TypePersonLeavesVehicle = "PersonLeavesVehicle"
)

// Event is implemented by every notification of this package.
type Event interface {
	// SimTime is the simulation time the event happened at.
	SimTime() float64
	// Type returns the serialised type name.
	Type() string
	isEvent()
}

// RequestSubmitted is emitted when a valid request is handed to the optimizer.
type RequestSubmitted struct {
	Time      float64
	Mode      string
	RequestID model.RequestID
	AgentID   model.AgentID
	FromLink  model.LinkID
	ToLink    model.LinkID
}

// RequestRejected is emitted once per rejected request.
type RequestRejected struct {
	Time      float64
	Mode      string
	RequestID model.RequestID
	Cause     string
}

// PersonStuck accompanies RequestRejected: the agent stays at its origin.
type PersonStuck struct {
	Time    float64
	AgentID model.AgentID
	LinkID  model.LinkID
	Mode    string
}

// PersonEntersVehicle is emitted when a pickup completes.
type PersonEntersVehicle struct {
	Time      float64
	AgentID   model.AgentID
	VehicleID model.VehicleID
}

// PersonLeavesVehicle is emitted when a dropoff completes.
type PersonLeavesVehicle struct {
	Time      float64
	AgentID   model.AgentID
	VehicleID model.VehicleID
}

func (e RequestSubmitted) SimTime() float64    { return e.Time }
func (e RequestRejected) SimTime() float64     { return e.Time }
func (e PersonStuck) SimTime() float64         { return e.Time }
func (e PersonEntersVehicle) SimTime() float64 { return e.Time }
func (e PersonLeavesVehicle) SimTime() float64 { return e.Time }

func (RequestSubmitted) Type() string    { return TypeRequestSubmitted }
func (RequestRejected) Type() string     { return TypeRequestRejected }
func (PersonStuck) Type() string         { return TypePersonStuck }
func (PersonEntersVehicle) Type() string { return TypePersonEntersVehicle }
func (PersonLeavesVehicle) Type() string { return TypePersonLeavesVehicle }

func (RequestSubmitted) isEvent()    {}
func (RequestRejected) isEvent()     {}
func (PersonStuck) isEvent()         {}
func (PersonEntersVehicle) isEvent() {}
func (PersonLeavesVehicle) isEvent() {}
