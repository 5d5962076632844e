package passenger

import (
	"errors"
	"fmt"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/model"
	"github.com/kilianp07/drt/core/monitoring"
)

// TryPickup is called by the vehicle side once driver waits at the pickup
// link of req. It returns true if the passenger boarded. Otherwise the
// pickup is parked and resumed when the passenger departs.
//
// An error is returned only for contract violations: an untracked request
// or a second vehicle waiting for the same request.
func (e *Engine) TryPickup(stop PickupStop, driver Driver, req *model.Request, now float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.passengers[req.ID]
	if !ok {
		return false, fmt.Errorf("pickup %s: %w", req.ID, ErrUnknownRequest)
	}
	return e.pickupLocked(t, req, Continuation{Stop: stop, Driver: driver, ArrivalTime: now}, now)
}

// pickupLocked boards the passenger if it waits where the driver is, or
// parks cont. Must be called with e.mu held.
func (e *Engine) pickupLocked(t *tracked, req *model.Request, cont Continuation, now float64) (bool, error) {
	agent := t.agent
	link := cont.Driver.CurrentLink()
	if agent.CurrentLink() != link || agent.State() != model.StateLeg || agent.Mode() != e.mode {
		return false, e.parkLocked(req, cont)
	}
	if !e.sim.UnregisterAgentOnLink(agent.ID(), link) {
		// the passenger left on another trip from this link, it may still come back
		e.logger.Warnf("passenger %s of %s not waiting on %s, parking pickup", agent.ID(), req.ID, link)
		return false, e.parkLocked(req, cont)
	}
	veh := cont.Driver.Vehicle()
	veh.AddPassenger(agent)
	agent.SetVehicle(veh)
	t.pickedUp = true
	// a pickup parked earlier for this request is served now
	e.awaiting.Retrieve(req.ID)
	awaitingPickups.WithLabelValues(e.mode).Set(float64(e.awaiting.Len()))
	pickupsTotal.WithLabelValues(e.mode, "completed").Inc()
	e.sink.ProcessEvent(events.PersonEntersVehicle{Time: now, AgentID: agent.ID(), VehicleID: veh.ID()})
	return true, nil
}

// resumeLocked retries a parked pickup at the passenger's departure. The
// returned callback informs the waiting stop and must run after e.mu is
// released.
func (e *Engine) resumeLocked(cont Continuation, req *model.Request, now float64) func() {
	t := e.passengers[req.ID]
	done, err := e.pickupLocked(t, req, cont, now)
	if err != nil || !done {
		return nil
	}
	pickupsTotal.WithLabelValues(e.mode, "resumed").Inc()
	e.logger.Debugf("pickup of %s resumed at %.0f, vehicle waited since %.0f", req.ID, now, cont.ArrivalTime)
	return func() { cont.Stop.PassengerPickedUp(req, now) }
}

// parkLocked must be called with e.mu held.
func (e *Engine) parkLocked(req *model.Request, cont Continuation) error {
	if err := e.awaiting.Store(req, cont); err != nil {
		e.logger.Errorf("cannot park pickup: %v", err)
		if errors.Is(err, ErrPickupAlreadyAwaiting) {
			monitoring.CaptureException(err, map[string]string{
				"mode":    e.mode,
				"request": string(req.ID),
				"driver":  string(cont.Driver.ID()),
			})
		}
		return err
	}
	pickupsTotal.WithLabelValues(e.mode, "parked").Inc()
	awaitingPickups.WithLabelValues(e.mode).Set(float64(e.awaiting.Len()))
	return nil
}

// Dropoff ends the trip of req at the driver's link. It must follow a
// successful pickup of the same request.
func (e *Engine) Dropoff(driver Driver, req *model.Request, now float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.passengers[req.ID]
	if !ok {
		return fmt.Errorf("dropoff %s: %w", req.ID, ErrUnknownRequest)
	}
	if !t.pickedUp {
		return fmt.Errorf("dropoff %s: %w", req.ID, ErrNotPickedUp)
	}
	delete(e.passengers, req.ID)

	agent := t.agent
	veh := driver.Vehicle()
	veh.RemovePassenger(agent)
	agent.SetVehicle(nil)
	dropoffsTotal.WithLabelValues(e.mode).Inc()
	e.sink.ProcessEvent(events.PersonLeavesVehicle{Time: now, AgentID: agent.ID(), VehicleID: veh.ID()})

	agent.NotifyArrivalOnLinkByNonNetworkMode(agent.DestinationLink())
	agent.EndLegAndComputeNextState(now)
	e.sim.ArrangeNextAgentState(agent)
	return nil
}
