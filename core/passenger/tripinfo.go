package passenger

import (
	"fmt"

	"github.com/kilianp07/drt/core/model"
)

// TimeInterpretation tells whether a trip info request time is a
// departure or an arrival.
type TimeInterpretation int

const (
	TimeDeparture TimeInterpretation = iota
	TimeArrival
)

// TripInfoRequest asks for the trip options between two facilities.
type TripInfoRequest struct {
	From           model.Facility
	To             model.Facility
	Time           float64
	Interpretation TimeInterpretation
}

// TripInfo is a trip option offered to a potential passenger.
type TripInfo struct {
	Mode                  string
	PickupLink            model.LinkID
	DropoffLink           model.LinkID
	ExpectedDepartureTime float64
	RequestTime           float64
}

// TripInfos returns the options for tr. The engine offers a single option
// departing at the requested time; nothing is booked until BookTrip.
func (e *Engine) TripInfos(now float64, tr TripInfoRequest) ([]TripInfo, error) {
	if tr.Interpretation != TimeDeparture {
		return nil, ErrUnsupportedTimeInterpretation
	}
	if e.network == nil {
		return nil, fmt.Errorf("trip infos: %w", ErrNilDependency)
	}
	pickup, ok := e.network.DecideOnLink(tr.From)
	if !ok {
		return nil, fmt.Errorf("trip infos from %s: %w", tr.From.ID, ErrUnknownFacility)
	}
	dropoff, ok := e.network.DecideOnLink(tr.To)
	if !ok {
		return nil, fmt.Errorf("trip infos to %s: %w", tr.To.ID, ErrUnknownFacility)
	}
	return []TripInfo{{
		Mode:                  e.mode,
		PickupLink:            pickup,
		DropoffLink:           dropoff,
		ExpectedDepartureTime: tr.Time,
		RequestTime:           now,
	}}, nil
}

// BookTrip accepts a trip info on behalf of agent.
func (e *Engine) BookTrip(now float64, agent PassengerAgent, info TripInfo) (*model.Request, error) {
	if info.Mode != e.mode {
		return nil, fmt.Errorf("book trip of mode %s on engine %s: %w", info.Mode, e.mode, ErrInvalidBooking)
	}
	return e.BookInAdvance(now, agent, info.PickupLink, info.DropoffLink, info.ExpectedDepartureTime)
}
