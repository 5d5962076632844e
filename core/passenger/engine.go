package passenger

import (
	"fmt"
	"sync"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/logger"
	"github.com/kilianp07/drt/core/model"
)

// tracked is the passenger of a live request.
type tracked struct {
	agent    PassengerAgent
	pickedUp bool
}

// Engine is the passenger engine of one mode. It is the single owner of
// the advance bookings, the parked pickups and the passenger of every live
// request; all entry points are serialised by its mutex.
type Engine struct {
	mode          string
	emitSubmitted bool
	sim           Simulation
	optimizer     Optimizer
	validator     Validator
	network       Network
	creator       RequestCreator
	sink          events.Sink
	logger        logger.Logger

	mu         sync.Mutex
	nextID     int64
	advance    *AdvanceRequestStore
	awaiting   *AwaitingPickupStore
	passengers map[model.RequestID]*tracked
}

// Stats is a snapshot of the engine state.
type Stats struct {
	Mode            string `json:"mode"`
	Created         int64  `json:"created"`
	AdvanceBookings int    `json:"advance_bookings"`
	AwaitingPickups int    `json:"awaiting_pickups"`
	Tracked         int    `json:"tracked"`
}

// New creates an engine for cfg.Mode. network may be nil when TripInfos is
// not used; a nil sink discards events and a nil logger is silent.
func New(cfg Config, sim Simulation, optimizer Optimizer, validator Validator, network Network, sink events.Sink, log logger.Logger) (*Engine, error) {
	if sim == nil || optimizer == nil || validator == nil {
		return nil, fmt.Errorf("new engine: %w", ErrNilDependency)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Engine{
		mode:          cfg.Mode,
		emitSubmitted: cfg.EmitSubmitted,
		sim:           sim,
		optimizer:     optimizer,
		validator:     validator,
		network:       network,
		creator:       DefaultRequestCreator{Mode: cfg.Mode},
		sink:          sink,
		logger:        logger.OrNop(log),
		advance:       NewAdvanceRequestStore(),
		awaiting:      NewAwaitingPickupStore(),
		passengers:    make(map[model.RequestID]*tracked),
	}, nil
}

// Mode returns the mode served by the engine. The mobsim uses it to route
// departures when several fleets coexist.
func (e *Engine) Mode() string { return e.mode }

// SetRequestCreator replaces the default request creator.
func (e *Engine) SetRequestCreator(c RequestCreator) {
	if c == nil {
		return
	}
	e.mu.Lock()
	e.creator = c
	e.mu.Unlock()
}

// HandleDeparture is called when agent starts a leg on from. It returns
// false only if the agent does not travel on this engine's mode. Rejections
// are reported through events, so a handled departure is never retried by
// another mode handler.
func (e *Engine) HandleDeparture(now float64, agent PassengerAgent, from model.LinkID) bool {
	if agent.Mode() != e.mode {
		return false
	}
	var resumed func()
	e.mu.Lock()
	e.sim.RegisterAgentOnLink(agent, from)
	to := agent.DestinationLink()
	if req := e.advance.Retrieve(agent.ID(), from, to, now); req != nil {
		e.logger.Debugf("departure of %s matches booking %s", agent.ID(), req.ID)
		e.passengers[req.ID] = &tracked{agent: agent}
		advanceBookings.WithLabelValues(e.mode).Set(float64(e.advance.Len()))
		if cont, ok := e.awaiting.Retrieve(req.ID); ok {
			resumed = e.resumeLocked(cont, req, now)
		}
	} else {
		e.createValidateAndSubmit(agent, from, to, now, now)
	}
	e.mu.Unlock()
	if resumed != nil {
		resumed()
	}
	return true
}

// BookInAdvance registers a trip before the agent actually departs. The
// departure must be strictly after now. A request rejected by the validator
// or the optimizer is returned with a nil error and is not stored.
func (e *Engine) BookInAdvance(now float64, agent PassengerAgent, from, to model.LinkID, departure float64) (*model.Request, error) {
	if departure <= now {
		return nil, fmt.Errorf("book %s at %.0f for %.0f: %w", agent.ID(), now, departure, ErrInvalidBooking)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	key := BookingKey{Passenger: agent.ID(), From: from, To: to}
	if e.advance.Has(key) {
		return nil, fmt.Errorf("book %s %s->%s: %w", agent.ID(), from, to, ErrBookingExists)
	}
	req := e.createValidateAndSubmit(agent, from, to, departure, now)
	if req.IsRejected() {
		return req, nil
	}
	if err := e.advance.Store(req); err != nil {
		return req, err
	}
	advanceBookings.WithLabelValues(e.mode).Set(float64(e.advance.Len()))
	e.logger.Debugw("advance booking stored", map[string]any{
		"request":   string(req.ID),
		"passenger": string(agent.ID()),
		"departure": departure,
		"now":       now,
	})
	return req, nil
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Mode:            e.mode,
		Created:         e.nextID,
		AdvanceBookings: e.advance.Len(),
		AwaitingPickups: e.awaiting.Len(),
		Tracked:         len(e.passengers),
	}
}

// OnPrepareSim is called once before the first simulation step.
func (e *Engine) OnPrepareSim() {
	e.logger.Infof("passenger engine ready for mode %s", e.mode)
}

// DoSimStep is called once per simulation step.
func (e *Engine) DoSimStep(float64) {
	e.mu.Lock()
	advanceBookings.WithLabelValues(e.mode).Set(float64(e.advance.Len()))
	awaitingPickups.WithLabelValues(e.mode).Set(float64(e.awaiting.Len()))
	e.mu.Unlock()
}

// AfterSim reports what is left unresolved at the end of the simulation.
// Leftover bookings and parked pickups are expected when the horizon ends.
func (e *Engine) AfterSim(now float64) Stats {
	st := e.Stats()
	if st.AdvanceBookings > 0 || st.AwaitingPickups > 0 || st.Tracked > 0 {
		e.logger.Warnf("mode %s ended at %.0f with %d unmatched bookings, %d parked pickups, %d passengers in service",
			e.mode, now, st.AdvanceBookings, st.AwaitingPickups, st.Tracked)
	}
	return st
}
