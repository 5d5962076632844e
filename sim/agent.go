package sim

import (
	"github.com/kilianp07/drt/core/model"
	"github.com/kilianp07/drt/core/passenger"
)

// Agent is a simulated person making a single trip.
type Agent struct {
	id    model.AgentID
	mode  string
	state model.AgentState
	link  model.LinkID
	dest  model.LinkID

	vehicle passenger.Vehicle

	departure float64
	boarded   float64
	arrived   float64
	hasBoard  bool
	done      bool
}

// NewAgent creates an agent performing an activity on from.
func NewAgent(id model.AgentID, mode string, from, to model.LinkID, departure float64) *Agent {
	return &Agent{id: id, mode: mode, state: model.StateActivity, link: from, dest: to, departure: departure}
}

func (a *Agent) ID() model.AgentID              { return a.id }
func (a *Agent) Mode() string                   { return a.mode }
func (a *Agent) State() model.AgentState        { return a.state }
func (a *Agent) CurrentLink() model.LinkID      { return a.link }
func (a *Agent) DestinationLink() model.LinkID  { return a.dest }
func (a *Agent) SetVehicle(v passenger.Vehicle) { a.vehicle = v }

func (a *Agent) NotifyArrivalOnLinkByNonNetworkMode(link model.LinkID) {
	a.link = link
}

func (a *Agent) EndLegAndComputeNextState(now float64) {
	a.state = model.StateActivity
	a.arrived = now
	a.done = true
}

// startLeg moves the agent from its activity onto its leg.
func (a *Agent) startLeg() { a.state = model.StateLeg }

// abort marks the agent stuck.
func (a *Agent) abort() { a.state = model.StateAbort }

// Done reports whether the agent reached its destination.
func (a *Agent) Done() bool { return a.done }

// Boarded returns when the agent entered a vehicle.
func (a *Agent) Boarded() (float64, bool) { return a.boarded, a.hasBoard }

// ArrivalTime returns when the agent reached its destination.
func (a *Agent) ArrivalTime() float64 { return a.arrived }
