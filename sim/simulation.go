package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/logger"
	"github.com/kilianp07/drt/core/model"
	"github.com/kilianp07/drt/core/passenger"
)

// Config holds the run settings that are not part of a scenario.
type Config struct {
	// Scenario is the path of the YAML scenario to run.
	Scenario string `json:"scenario"`
	// EndTime overrides the scenario end time when positive.
	EndTime float64 `json:"end_time"`
	// StepSeconds is the period of the engine step hook.
	StepSeconds float64 `json:"step_seconds"`
	// MaxWaitSeconds rejects queued requests that found no taxi in time.
	// 0 waits forever.
	MaxWaitSeconds float64 `json:"max_wait_seconds"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.StepSeconds <= 0 {
		c.StepSeconds = 60
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.EndTime < 0 || c.MaxWaitSeconds < 0 {
		return fmt.Errorf("simulation times must not be negative")
	}
	return nil
}

// Summary is the outcome of a run.
type Summary struct {
	Scenario      string          `json:"scenario"`
	Mode          string          `json:"mode"`
	EndTime       float64         `json:"end_time"`
	Passengers    int             `json:"passengers"`
	Arrived       int             `json:"arrived"`
	Teleported    int             `json:"teleported"`
	Stuck         int             `json:"stuck"`
	PickedUp      int             `json:"picked_up"`
	DroppedOff    int             `json:"dropped_off"`
	Rejected      int             `json:"rejected"`
	Rejections    map[string]int  `json:"rejections,omitempty"`
	BookingErrors int             `json:"booking_errors"`
	StillWaiting  int             `json:"still_waiting"`
	MeanWait      float64         `json:"mean_wait_seconds"`
	MaxWait       float64         `json:"max_wait_seconds"`
	Engine        passenger.Stats `json:"engine"`
}

// Simulation drives the engine with scenario agents and taxis. It runs on
// a single goroutine.
type Simulation struct {
	name      string
	queue     Queue
	network   *Network
	engine    *passenger.Engine
	optimizer *FleetOptimizer
	logger    logger.Logger

	agents  map[model.AgentID]*Agent
	order   []model.AgentID
	taxis   []*Taxi
	waiting map[model.AgentID]model.LinkID

	now     float64
	endTime float64
	step    float64
	sum     Summary
	waits   []float64
}

// Build creates the network, fleet, engine and agents of sc. The engine
// reports to the simulation itself and to sink.
func Build(sc *Scenario, cfg Config, engineCfg passenger.Config, sink events.Sink, log logger.Logger) (*Simulation, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)
	net, err := NewNetwork(sc.Network.Links, sc.Network.Nodes, sc.Facilities)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		name:    sc.Name,
		network: net,
		logger:  log,
		agents:  make(map[model.AgentID]*Agent),
		waiting: make(map[model.AgentID]model.LinkID),
		endTime: sc.EndTime,
		step:    cfg.StepSeconds,
		sum:     Summary{Scenario: sc.Name, Rejections: make(map[string]int)},
	}
	if cfg.EndTime > 0 {
		s.endTime = cfg.EndTime
	}
	s.optimizer = &FleetOptimizer{sim: s, maxWait: cfg.MaxWaitSeconds, log: log}

	if sc.Mode != "" {
		engineCfg.Mode = sc.Mode
	}
	validator := passenger.Validators{passenger.DefaultValidator{}, passenger.LinkValidator{Known: net.HasLink}}
	eng, err := passenger.New(engineCfg, s, s.optimizer, validator, net, events.NewMultiSink(s, sink), log)
	if err != nil {
		return nil, err
	}
	s.engine = eng
	s.optimizer.rejecter = eng
	s.sum.Mode = eng.Mode()

	for _, td := range sc.Taxis {
		if !net.HasLink(model.LinkID(td.Link)) {
			return nil, fmt.Errorf("taxi %s: unknown link %s", td.ID, td.Link)
		}
		t := newTaxi(td.ID, model.LinkID(td.Link), s)
		s.taxis = append(s.taxis, t)
		s.optimizer.taxis = append(s.optimizer.taxis, t)
	}
	for _, pd := range sc.Passengers {
		if err := s.addPassenger(pd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) resolve(link, facility string) (model.LinkID, error) {
	if link != "" {
		return model.LinkID(link), nil
	}
	l, ok := s.network.DecideOnLink(model.Facility{ID: facility})
	if !ok {
		return "", fmt.Errorf("%w: %s", passenger.ErrUnknownFacility, facility)
	}
	return l, nil
}

func (s *Simulation) addPassenger(pd PassengerDef) error {
	from, err := s.resolve(pd.From, pd.FromFacility)
	if err != nil {
		return fmt.Errorf("passenger %s: %w", pd.ID, err)
	}
	to, err := s.resolve(pd.To, pd.ToFacility)
	if err != nil {
		return fmt.Errorf("passenger %s: %w", pd.ID, err)
	}
	mode := pd.Mode
	if mode == "" {
		mode = s.engine.Mode()
	}
	a := NewAgent(model.AgentID(pd.ID), mode, from, to, pd.Departure)
	s.agents[a.id] = a
	s.order = append(s.order, a.id)
	s.sum.Passengers++

	if pd.PrebookAt != nil {
		s.queue.Schedule(*pd.PrebookAt, func(now float64) { s.book(now, a, pd) })
	}
	s.queue.Schedule(pd.Departure, func(now float64) { s.depart(now, a) })
	return nil
}

func (s *Simulation) book(now float64, a *Agent, pd PassengerDef) {
	if a.mode != s.engine.Mode() {
		return
	}
	var err error
	if pd.FromFacility != "" && pd.ToFacility != "" {
		var infos []passenger.TripInfo
		infos, err = s.engine.TripInfos(now, passenger.TripInfoRequest{
			From: model.Facility{ID: pd.FromFacility},
			To:   model.Facility{ID: pd.ToFacility},
			Time: pd.Departure,
		})
		if err == nil && len(infos) > 0 {
			_, err = s.engine.BookTrip(now, a, infos[0])
		}
	} else {
		_, err = s.engine.BookInAdvance(now, a, a.link, a.dest, a.departure)
	}
	if err != nil {
		s.sum.BookingErrors++
		s.logger.Warnf("booking of %s failed: %v", a.id, err)
	}
}

func (s *Simulation) depart(now float64, a *Agent) {
	if a.state == model.StateAbort {
		return
	}
	a.startLeg()
	if s.engine.HandleDeparture(now, a, a.link) {
		return
	}
	// not served by the engine, teleport at network speed
	tt, ok := s.network.TravelTime(a.link, a.dest)
	if !ok {
		a.abort()
		s.sum.Stuck++
		s.logger.Warnf("agent %s cannot reach %s by %s", a.id, a.dest, a.mode)
		return
	}
	s.sum.Teleported++
	s.queue.Schedule(now+tt, func(now float64) {
		a.NotifyArrivalOnLinkByNonNetworkMode(a.dest)
		a.EndLegAndComputeNextState(now)
		s.ArrangeNextAgentState(a)
	})
}

// RegisterAgentOnLink records that agent waits on link.
func (s *Simulation) RegisterAgentOnLink(agent passenger.PassengerAgent, link model.LinkID) {
	s.waiting[agent.ID()] = link
}

// UnregisterAgentOnLink removes a waiting agent. It fails if the agent is
// not waiting on link.
func (s *Simulation) UnregisterAgentOnLink(id model.AgentID, link model.LinkID) bool {
	if l, ok := s.waiting[id]; !ok || l != link {
		return false
	}
	delete(s.waiting, id)
	return true
}

// ArrangeNextAgentState ends the plan of an arrived agent.
func (s *Simulation) ArrangeNextAgentState(agent passenger.PassengerAgent) {
	s.sum.Arrived++
	s.logger.Debugf("agent %s arrived on %s at %.0f", agent.ID(), agent.CurrentLink(), s.now)
}

// ProcessEvent tracks the outcome of every trip.
func (s *Simulation) ProcessEvent(ev events.Event) {
	switch e := ev.(type) {
	case events.RequestRejected:
		s.sum.Rejected++
		s.sum.Rejections[e.Cause]++
	case events.PersonStuck:
		s.sum.Stuck++
		delete(s.waiting, e.AgentID)
		if a, ok := s.agents[e.AgentID]; ok {
			a.abort()
		}
	case events.PersonEntersVehicle:
		s.sum.PickedUp++
		if a, ok := s.agents[e.AgentID]; ok {
			a.boarded, a.hasBoard = e.Time, true
			s.waits = append(s.waits, e.Time-a.departure)
		}
	case events.PersonLeavesVehicle:
		s.sum.DroppedOff++
	}
}

// Engine returns the passenger engine driven by the simulation.
func (s *Simulation) Engine() *passenger.Engine { return s.engine }

// Agent returns the agent with the given id.
func (s *Simulation) Agent(id model.AgentID) (*Agent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// Run processes scheduled actions until the queue is empty, the end time
// is reached or ctx is canceled.
func (s *Simulation) Run(ctx context.Context) (Summary, error) {
	s.engine.OnPrepareSim()
	nextStep := 0.0
	for s.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		at, _ := s.queue.Next()
		if s.endTime > 0 && at > s.endTime {
			break
		}
		for nextStep <= at {
			s.engine.DoSimStep(nextStep)
			nextStep += s.step
		}
		at, run := s.queue.Pop()
		s.now = at
		run(at)
	}
	if s.endTime > 0 && s.queue.Len() > 0 {
		s.now = s.endTime
	}
	return s.finish(), nil
}

func (s *Simulation) finish() Summary {
	s.sum.EndTime = s.now
	s.sum.Engine = s.engine.AfterSim(s.now)
	s.sum.StillWaiting = len(s.waiting)
	s.sum.MeanWait, s.sum.MaxWait = 0, 0
	if len(s.waits) > 0 {
		total := 0.0
		for _, w := range s.waits {
			total += w
			s.sum.MaxWait = math.Max(s.sum.MaxWait, w)
		}
		s.sum.MeanWait = total / float64(len(s.waits))
	}
	out := s.sum
	out.Rejections = make(map[string]int, len(s.sum.Rejections))
	for k, v := range s.sum.Rejections {
		out.Rejections[k] = v
	}
	return out
}

// Waiting lists the agents still waiting for a pickup, sorted by id.
func (s *Simulation) Waiting() []model.AgentID {
	ids := make([]model.AgentID, 0, len(s.waiting))
	for id := range s.waiting {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
