package passenger

import "errors"

var (
	// ErrInvalidBooking is returned when an advance booking is not strictly
	// in the future.
	ErrInvalidBooking = errors.New("passenger: booking must depart after now")
	// ErrBookingExists is returned when the same passenger already holds a
	// booking for the same origin and destination.
	ErrBookingExists = errors.New("passenger: booking already exists")
	// ErrUnknownRequest is returned for pickups or dropoffs of requests
	// that are not tracked by the engine.
	ErrUnknownRequest = errors.New("passenger: request not tracked")
	// ErrPickupAlreadyAwaiting signals that two vehicles attempted to pick
	// up the same request. This is a dispatching defect.
	ErrPickupAlreadyAwaiting = errors.New("passenger: pickup already awaiting")
	// ErrRejectedRequest is returned when a rejected request is stored.
	ErrRejectedRequest = errors.New("passenger: request is rejected")
	// ErrUnsupportedTimeInterpretation is returned by TripInfos for arrival
	// based requests.
	ErrUnsupportedTimeInterpretation = errors.New("passenger: only departure time interpretation is supported")
	// ErrUnknownFacility is returned when a facility cannot be placed on
	// the network.
	ErrUnknownFacility = errors.New("passenger: facility not on network")
	// ErrNilDependency is returned by New when a collaborator is missing.
	ErrNilDependency = errors.New("passenger: nil dependency")
)

// ErrNotPickedUp is returned by Dropoff for a tracked request whose
// passenger never boarded.
var ErrNotPickedUp = errors.New("passenger: request not picked up")
