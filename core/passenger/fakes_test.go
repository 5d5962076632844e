package passenger

import (
	"github.com/stretchr/testify/mock"

	"github.com/kilianp07/drt/core/model"
)

type fakeAgent struct {
	id      model.AgentID
	mode    string
	state   model.AgentState
	link    model.LinkID
	dest    model.LinkID
	vehicle Vehicle
	arrived []model.LinkID
	ended   []float64
}

func newAgent(id, mode string, from, to model.LinkID) *fakeAgent {
	return &fakeAgent{id: model.AgentID(id), mode: mode, state: model.StateActivity, link: from, dest: to}
}

func (a *fakeAgent) ID() model.AgentID             { return a.id }
func (a *fakeAgent) Mode() string                  { return a.mode }
func (a *fakeAgent) State() model.AgentState       { return a.state }
func (a *fakeAgent) CurrentLink() model.LinkID     { return a.link }
func (a *fakeAgent) DestinationLink() model.LinkID { return a.dest }
func (a *fakeAgent) SetVehicle(v Vehicle)          { a.vehicle = v }
func (a *fakeAgent) EndLegAndComputeNextState(now float64) {
	a.ended = append(a.ended, now)
	a.state = model.StateActivity
}
func (a *fakeAgent) NotifyArrivalOnLinkByNonNetworkMode(l model.LinkID) {
	a.arrived = append(a.arrived, l)
	a.link = l
}

// depart puts the agent on its leg the way the mobsim does before calling
// HandleDeparture.
func (a *fakeAgent) depart() { a.state = model.StateLeg }

type fakeVehicle struct {
	id         model.VehicleID
	passengers map[model.AgentID]bool
}

func newVehicle(id string) *fakeVehicle {
	return &fakeVehicle{id: model.VehicleID(id), passengers: map[model.AgentID]bool{}}
}

func (v *fakeVehicle) ID() model.VehicleID              { return v.id }
func (v *fakeVehicle) AddPassenger(p PassengerAgent)    { v.passengers[p.ID()] = true }
func (v *fakeVehicle) RemovePassenger(p PassengerAgent) { delete(v.passengers, p.ID()) }

type fakeDriver struct {
	id   model.AgentID
	link model.LinkID
	veh  *fakeVehicle
}

func newDriver(id string, link model.LinkID) *fakeDriver {
	return &fakeDriver{id: model.AgentID(id), link: link, veh: newVehicle("veh_" + id)}
}

func (d *fakeDriver) ID() model.AgentID         { return d.id }
func (d *fakeDriver) CurrentLink() model.LinkID { return d.link }
func (d *fakeDriver) Vehicle() Vehicle          { return d.veh }

type fakeStop struct {
	pickedUp []float64
}

func (s *fakeStop) PassengerPickedUp(_ *model.Request, now float64) {
	s.pickedUp = append(s.pickedUp, now)
}

type fakeSim struct {
	waiting  map[model.AgentID]model.LinkID
	arranged []model.AgentID
}

func newFakeSim() *fakeSim { return &fakeSim{waiting: map[model.AgentID]model.LinkID{}} }

func (s *fakeSim) RegisterAgentOnLink(a PassengerAgent, link model.LinkID) {
	s.waiting[a.ID()] = link
}
func (s *fakeSim) UnregisterAgentOnLink(id model.AgentID, link model.LinkID) bool {
	if l, ok := s.waiting[id]; !ok || l != link {
		return false
	}
	delete(s.waiting, id)
	return true
}
func (s *fakeSim) ArrangeNextAgentState(a PassengerAgent) { s.arranged = append(s.arranged, a.ID()) }

// recordingOptimizer accepts everything unless reject is set.
type recordingOptimizer struct {
	submitted []*model.Request
	reject    string
}

func (o *recordingOptimizer) Submit(req *model.Request) {
	o.submitted = append(o.submitted, req)
	if o.reject != "" {
		req.Reject(o.reject)
	}
}

type mockOptimizer struct {
	mock.Mock
}

func (m *mockOptimizer) Submit(req *model.Request) { m.Called(req) }

type staticNetwork map[string]model.LinkID

func (n staticNetwork) DecideOnLink(f model.Facility) (model.LinkID, bool) {
	if f.LinkID != "" {
		return f.LinkID, true
	}
	l, ok := n[f.ID]
	return l, ok
}
