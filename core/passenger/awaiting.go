package passenger

import (
	"fmt"

	"github.com/kilianp07/drt/core/model"
)

// Continuation records that a vehicle is ready to pick up a request whose
// passenger is not ready yet. It is consumed by a single resume.
type Continuation struct {
	Stop        PickupStop
	Driver      Driver
	ArrivalTime float64 // when the vehicle reached the pickup link
}

// AwaitingPickupStore holds at most one continuation per request.
// It is not safe for concurrent use; Engine serialises access.
type AwaitingPickupStore struct {
	pending map[model.RequestID]Continuation
}

// NewAwaitingPickupStore returns an empty store.
func NewAwaitingPickupStore() *AwaitingPickupStore {
	return &AwaitingPickupStore{pending: make(map[model.RequestID]Continuation)}
}

// Store parks cont for req. The same driver retrying refreshes its entry
// and keeps the original arrival time. A continuation from another driver
// means two vehicles were sent for one passenger and is rejected.
func (s *AwaitingPickupStore) Store(req *model.Request, cont Continuation) error {
	if req.IsRejected() {
		return fmt.Errorf("park pickup %s: %w", req.ID, ErrRejectedRequest)
	}
	if prev, ok := s.pending[req.ID]; ok {
		if prev.Driver.ID() != cont.Driver.ID() {
			return fmt.Errorf("park pickup %s for %s (held by %s since %.0f): %w",
				req.ID, cont.Driver.ID(), prev.Driver.ID(), prev.ArrivalTime, ErrPickupAlreadyAwaiting)
		}
		cont.ArrivalTime = prev.ArrivalTime
	}
	s.pending[req.ID] = cont
	return nil
}

// Has reports whether a continuation is parked for id.
func (s *AwaitingPickupStore) Has(id model.RequestID) bool {
	_, ok := s.pending[id]
	return ok
}

// Retrieve removes and returns the continuation parked for id.
func (s *AwaitingPickupStore) Retrieve(id model.RequestID) (Continuation, bool) {
	cont, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return cont, ok
}

// Len returns the number of parked continuations.
func (s *AwaitingPickupStore) Len() int { return len(s.pending) }
