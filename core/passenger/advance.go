package passenger

import (
	"fmt"

	"github.com/kilianp07/drt/core/model"
)

// BookingKey recognises a booked trip at departure time.
type BookingKey struct {
	Passenger model.AgentID
	From      model.LinkID
	To        model.LinkID
}

// KeyOf returns the booking key of a request.
func KeyOf(req *model.Request) BookingKey {
	return BookingKey{Passenger: req.PassengerID, From: req.FromLink, To: req.ToLink}
}

// AdvanceRequestStore holds accepted requests booked for a later departure.
// It is not safe for concurrent use; Engine serialises access.
type AdvanceRequestStore struct {
	bookings map[BookingKey]*model.Request
}

// NewAdvanceRequestStore returns an empty store.
func NewAdvanceRequestStore() *AdvanceRequestStore {
	return &AdvanceRequestStore{bookings: make(map[BookingKey]*model.Request)}
}

// Store inserts an accepted booking.
func (s *AdvanceRequestStore) Store(req *model.Request) error {
	if req.IsRejected() {
		return fmt.Errorf("store booking %s: %w", req.ID, ErrRejectedRequest)
	}
	key := KeyOf(req)
	if prev, ok := s.bookings[key]; ok {
		return fmt.Errorf("store booking %s (held by %s): %w", req.ID, prev.ID, ErrBookingExists)
	}
	s.bookings[key] = req
	return nil
}

// Retrieve removes and returns the booking for the exact triple if its
// departure time is not after now. A booking promises a departure no
// earlier than the booked time, so an early departure does not match and
// the booking is kept.
func (s *AdvanceRequestStore) Retrieve(passenger model.AgentID, from, to model.LinkID, now float64) *model.Request {
	key := BookingKey{Passenger: passenger, From: from, To: to}
	req, ok := s.bookings[key]
	if !ok || now < req.EarliestStartTime {
		return nil
	}
	delete(s.bookings, key)
	return req
}

// Has reports whether a booking is held for key.
func (s *AdvanceRequestStore) Has(key BookingKey) bool {
	_, ok := s.bookings[key]
	return ok
}

// Len returns the number of unmatched bookings.
func (s *AdvanceRequestStore) Len() int { return len(s.bookings) }

// Remove drops req if it is the booking held for its key.
func (s *AdvanceRequestStore) Remove(req *model.Request) bool {
	key := KeyOf(req)
	if s.bookings[key] != req {
		return false
	}
	delete(s.bookings, key)
	return true
}
