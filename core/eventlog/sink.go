package eventlog

import (
	"context"
	"sync/atomic"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/logger"
)

// Sink appends every event to a Store. Append errors are logged and
// counted; the simulation does not stop for a failing log.
type Sink struct {
	store  Store
	log    logger.Logger
	failed atomic.Uint64
}

// NewSink wraps store. A nil logger is silent.
func NewSink(store Store, log logger.Logger) *Sink {
	return &Sink{store: store, log: logger.OrNop(log)}
}

func (s *Sink) ProcessEvent(ev events.Event) {
	if err := s.store.Append(context.Background(), events.ToRecord(ev)); err != nil {
		s.failed.Add(1)
		s.log.Errorf("event log append %s: %v", ev.Type(), err)
	}
}

// Failed returns the number of events that could not be stored.
func (s *Sink) Failed() uint64 { return s.failed.Load() }
