package sim

import (
	"math"

	"github.com/kilianp07/drt/core/logger"
	"github.com/kilianp07/drt/core/model"
)

// Rejection causes of the fleet optimizer.
const (
	CauseUnreachable = "no_vehicle_can_reach_pickup"
	CauseMaxWait     = "max_wait_exceeded"
)

// Rejecter rejects a request after it was accepted for planning.
type Rejecter interface {
	RejectRequest(req *model.Request, cause string) bool
}

// FleetOptimizer assigns each request to the idle taxi closest to its
// pickup link. Requests that find no idle taxi are queued and served first
// come first served when a taxi becomes idle.
type FleetOptimizer struct {
	sim      *Simulation
	taxis    []*Taxi
	pending  []*model.Request
	maxWait  float64
	rejecter Rejecter
	log      logger.Logger
}

// Submit is called by the engine with its lock held; it only plans and
// schedules.
func (o *FleetOptimizer) Submit(req *model.Request) {
	var (
		best      *Taxi
		bestTime  = math.Inf(1)
		reachable bool
	)
	for _, t := range o.taxis {
		tt, ok := o.sim.network.TravelTime(t.link, req.FromLink)
		if !ok {
			continue
		}
		reachable = true
		if t.state == taxiIdle && tt < bestTime {
			best, bestTime = t, tt
		}
	}
	switch {
	case !reachable:
		req.Reject(CauseUnreachable)
	case best == nil:
		o.log.Debugf("no idle taxi for %s, %d requests queued", req.ID, len(o.pending)+1)
		o.pending = append(o.pending, req)
	default:
		o.log.Debugf("request %s assigned to %s, %.0fs away", req.ID, best.id, bestTime)
		best.assign(req, req.SubmissionTime)
	}
}

// vehicleIdle hands the oldest queued request the taxi can reach to t.
// Queued requests waiting longer than the maximum wait are rejected.
func (o *FleetOptimizer) vehicleIdle(t *Taxi, now float64) {
	kept := o.pending[:0]
	var next *model.Request
	for _, req := range o.pending {
		switch {
		case req.IsRejected():
		case o.expired(req, now):
			if o.rejecter != nil {
				o.rejecter.RejectRequest(req, CauseMaxWait)
			}
		case next == nil && o.canReach(t, req):
			next = req
		default:
			kept = append(kept, req)
		}
	}
	o.pending = kept
	if next != nil {
		t.assign(next, now)
	}
}

func (o *FleetOptimizer) expired(req *model.Request, now float64) bool {
	if o.maxWait <= 0 {
		return false
	}
	return now-math.Max(req.EarliestStartTime, req.SubmissionTime) > o.maxWait
}

func (o *FleetOptimizer) canReach(t *Taxi, req *model.Request) bool {
	_, ok := o.sim.network.TravelTime(t.link, req.FromLink)
	return ok
}

// Pending returns the number of queued requests.
func (o *FleetOptimizer) Pending() int { return len(o.pending) }
