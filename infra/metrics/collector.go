package metrics

import (
	"context"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards every event
// to sink on its own goroutine, keeping slow sinks off the simulation
// thread. It stops when the context is canceled or the bus is closed; the
// returned channel is closed once the goroutine has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink events.Sink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				sink.ProcessEvent(ev)
			}
		}
	}()
	return done
}
