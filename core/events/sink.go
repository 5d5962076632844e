package events

import (
	"sync"

	"github.com/kilianp07/drt/internal/eventbus"
)

// Sink receives the notifications of the engine. ProcessEvent is called
// synchronously from the simulation thread and must not block for long.
type Sink interface {
	ProcessEvent(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) ProcessEvent(ev Event) { f(ev) }

// NopSink discards every event.
type NopSink struct{}

func (NopSink) ProcessEvent(Event) {}

// MultiSink forwards events to all sinks in order.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink skipping nil sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.Sinks = append(m.Sinks, s)
		}
	}
	return m
}

func (m *MultiSink) ProcessEvent(ev Event) {
	for _, s := range m.Sinks {
		s.ProcessEvent(ev)
	}
}

// BusSink publishes events on a typed bus for asynchronous consumers.
type BusSink struct {
	Bus *eventbus.TypedBus[Event]
}

func (b BusSink) ProcessEvent(ev Event) {
	if b.Bus != nil {
		b.Bus.Publish(ev)
	}
}

// Recorder keeps every event in memory. It is used by tests and by the
// run summary.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) ProcessEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events have the given type name.
func (r *Recorder) Count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type() == typ {
			n++
		}
	}
	return n
}
