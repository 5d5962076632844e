package sim

import (
	"github.com/kilianp07/drt/core/model"
	"github.com/kilianp07/drt/core/passenger"
)

type taxiState int

const (
	taxiIdle taxiState = iota
	taxiToPickup
	taxiWaiting
	taxiOccupied
)

func (s taxiState) String() string {
	switch s {
	case taxiIdle:
		return "idle"
	case taxiToPickup:
		return "to_pickup"
	case taxiWaiting:
		return "waiting"
	case taxiOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// seat is the vehicle of a taxi.
type seat struct {
	id      model.VehicleID
	onboard map[model.AgentID]passenger.PassengerAgent
}

func (s *seat) ID() model.VehicleID { return s.id }
func (s *seat) AddPassenger(p passenger.PassengerAgent) {
	s.onboard[p.ID()] = p
}
func (s *seat) RemovePassenger(p passenger.PassengerAgent) {
	delete(s.onboard, p.ID())
}

// Taxi is a single seat vehicle with its driver. It serves one request at
// a time: drive to the pickup link, wait for the passenger if needed, drive
// to the dropoff link.
type Taxi struct {
	id    model.AgentID
	link  model.LinkID
	state taxiState
	req   *model.Request
	seat  *seat
	sim   *Simulation
}

func newTaxi(id string, link model.LinkID, sim *Simulation) *Taxi {
	return &Taxi{
		id:   model.AgentID(id),
		link: link,
		seat: &seat{id: model.VehicleID("veh_" + id), onboard: make(map[model.AgentID]passenger.PassengerAgent)},
		sim:  sim,
	}
}

func (t *Taxi) ID() model.AgentID          { return t.id }
func (t *Taxi) CurrentLink() model.LinkID  { return t.link }
func (t *Taxi) Vehicle() passenger.Vehicle { return t.seat }

// Occupancy returns the number of passengers on board.
func (t *Taxi) Occupancy() int { return len(t.seat.onboard) }

// assign sends the taxi to the pickup of req. It only schedules actions so
// it is safe to call from inside the engine.
func (t *Taxi) assign(req *model.Request, now float64) {
	tt, _ := t.sim.network.TravelTime(t.link, req.FromLink)
	t.state = taxiToPickup
	t.req = req
	t.sim.queue.Schedule(now+tt, t.arriveAtPickup)
}

func (t *Taxi) arriveAtPickup(now float64) {
	req := t.req
	if req == nil || req.IsRejected() {
		t.release(now)
		return
	}
	t.link = req.FromLink
	t.state = taxiWaiting
	done, err := t.sim.engine.TryPickup(t, t, req, now)
	if err != nil {
		t.sim.logger.Errorf("taxi %s pickup %s: %v", t.id, req.ID, err)
		t.release(now)
		return
	}
	if done {
		t.driveToDropoff(now)
	}
}

// PassengerPickedUp is called by the engine once a parked pickup completed.
func (t *Taxi) PassengerPickedUp(req *model.Request, now float64) {
	if t.req != req {
		t.sim.logger.Warnf("taxi %s notified for %s while serving %v", t.id, req.ID, t.req)
		return
	}
	t.driveToDropoff(now)
}

func (t *Taxi) driveToDropoff(now float64) {
	t.state = taxiOccupied
	tt, ok := t.sim.network.TravelTime(t.link, t.req.ToLink)
	if !ok {
		t.sim.logger.Errorf("taxi %s cannot reach %s, dropping off on %s", t.id, t.req.ToLink, t.link)
	}
	t.sim.queue.Schedule(now+tt, t.arriveAtDropoff)
}

func (t *Taxi) arriveAtDropoff(now float64) {
	req := t.req
	t.link = req.ToLink
	if err := t.sim.engine.Dropoff(t, req, now); err != nil {
		t.sim.logger.Errorf("taxi %s dropoff %s: %v", t.id, req.ID, err)
	}
	t.release(now)
}

// release makes the taxi available for the next request.
func (t *Taxi) release(now float64) {
	t.state = taxiIdle
	t.req = nil
	t.sim.optimizer.vehicleIdle(t, now)
}
