package model

import (
	"fmt"
	"sync"
)

// RequestID identifies a passenger request within a simulation run.
type RequestID string

// NewRequestID builds the identifier of the seq-th request of a mode.
func NewRequestID(mode string, seq int64) RequestID {
	return RequestID(fmt.Sprintf("%s_%d", mode, seq))
}

// Request is a single trip demand submitted by a simulated traveller.
// Everything but the rejection state is fixed at creation.
type Request struct {
	ID                RequestID
	Mode              string
	PassengerID       AgentID
	FromLink          LinkID
	ToLink            LinkID
	EarliestStartTime float64 // requested departure, simulation seconds
	SubmissionTime    float64 // simulation clock when the request was created

	mu       sync.Mutex
	rejected bool
	cause    string
}

// IsRejected reports whether the request has been rejected.
func (r *Request) IsRejected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rejected
}

// RejectionCause returns the cause recorded by the first Reject call.
func (r *Request) RejectionCause() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cause
}

// Reject marks the request as rejected. Only the first call has an effect
// and returns true; a rejected request never becomes valid again.
func (r *Request) Reject(cause string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejected {
		return false
	}
	r.rejected = true
	r.cause = cause
	return true
}

// String implements fmt.Stringer.
func (r *Request) String() string {
	return fmt.Sprintf("%s[%s %s->%s @%.0f]", r.ID, r.PassengerID, r.FromLink, r.ToLink, r.EarliestStartTime)
}
