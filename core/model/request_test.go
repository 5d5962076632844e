package model

import (
	"sync"
	"testing"
)

func TestNewRequestID(t *testing.T) {
	if id := NewRequestID("taxi", 7); id != "taxi_7" {
		t.Fatalf("expected taxi_7 got %s", id)
	}
}

func TestRequestRejectOnce(t *testing.T) {
	r := &Request{ID: "taxi_0"}
	if r.IsRejected() {
		t.Fatalf("new request must not be rejected")
	}
	if !r.Reject("first") {
		t.Fatalf("first reject should report a transition")
	}
	if r.Reject("second") {
		t.Fatalf("second reject must be a no-op")
	}
	if !r.IsRejected() {
		t.Fatalf("request should stay rejected")
	}
	if r.RejectionCause() != "first" {
		t.Fatalf("cause overwritten: %s", r.RejectionCause())
	}
}

func TestRequestRejectConcurrent(t *testing.T) {
	r := &Request{ID: "taxi_1"}
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		transitions int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Reject("busy") {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if transitions != 1 {
		t.Fatalf("expected exactly one transition got %d", transitions)
	}
}

func TestAgentStateString(t *testing.T) {
	if StateLeg.String() != "leg" || AgentState(42).String() != "unknown" {
		t.Fatalf("unexpected state names")
	}
}
