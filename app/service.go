package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	eventsapi "github.com/kilianp07/drt/api/events"
	"github.com/kilianp07/drt/api/status"
	"github.com/kilianp07/drt/config"
	"github.com/kilianp07/drt/core/eventlog"
	"github.com/kilianp07/drt/core/events"
	coremetrics "github.com/kilianp07/drt/core/metrics"
	coremon "github.com/kilianp07/drt/core/monitoring"
	infraeventlog "github.com/kilianp07/drt/infra/eventlog"
	"github.com/kilianp07/drt/infra/kpi"
	"github.com/kilianp07/drt/infra/logger"
	"github.com/kilianp07/drt/infra/metrics"
	"github.com/kilianp07/drt/infra/monitoring"
	"github.com/kilianp07/drt/infra/mqtt"
	"github.com/kilianp07/drt/infra/stream"
	"github.com/kilianp07/drt/infra/telemetry"
	"github.com/kilianp07/drt/internal/eventbus"
	"github.com/kilianp07/drt/sim"
)

// busBuffer holds enough events for slow publishers to catch up with a
// simulation burst.
const busBuffer = 4096

// Service runs one scenario and fans the engine notifications out to the
// configured sinks.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	runID string

	Sim      *sim.Simulation
	expected sim.Expected
	store    eventlog.Store
	logSink  *eventlog.Sink
	metrics  events.Sink
	bus      *eventbus.TypedBus[events.Event]
	pub      *mqtt.Publisher
	reporter *telemetry.Reporter
	async    []events.Sink
	closers  []func() error
	started  bool
	done     []<-chan struct{}
	cancelBg context.CancelFunc
}

// New builds the sinks and the simulation of cfg.Simulation.Scenario.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := logger.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sc, err := sim.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	mode := cfg.Engine.Mode
	if sc.Mode != "" {
		mode = sc.Mode
	}

	s := &Service{cfg: cfg, log: logger.New("service"), runID: uuid.NewString()}
	if err := s.buildSinks(ctx, mode); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.expected = sc.Expected
	sinks := []events.Sink{s.metrics}
	if s.logSink != nil {
		sinks = append(sinks, s.logSink)
	}
	if s.bus != nil {
		sinks = append(sinks, events.BusSink{Bus: s.bus})
	}
	s.Sim, err = sim.Build(sc, cfg.Simulation, cfg.Engine, events.NewMultiSink(sinks...), logger.New("sim"))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("build simulation: %w", err)
	}
	if s.pub != nil && cfg.MQTT.StatusIntervalSeconds > 0 {
		interval := time.Duration(cfg.MQTT.StatusIntervalSeconds) * time.Second
		s.reporter = telemetry.NewReporter(s.pub, s.Sim.Engine(), s.runID, interval)
	}
	s.log.Infof("run %s: scenario %s, mode %s", s.runID, sc.Name, s.Sim.Engine().Mode())
	return s, nil
}

func (s *Service) buildSinks(ctx context.Context, mode string) error {
	store, err := infraeventlog.Open(s.cfg.EventLog)
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	if store != nil {
		s.store = store
		s.logSink = eventlog.NewSink(store, logger.New("event-log"))
		s.closers = append(s.closers, store.Close)
	}

	s.metrics, err = coremetrics.NewSink(s.cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	s.closers = append(s.closers, closerOf(s.metrics)...)

	if s.cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(s.cfg.MQTT, mode, s.runID)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		s.pub = pub
		s.async = append(s.async, pub)
		s.closers = append(s.closers, func() error { pub.Disconnect(); return nil })
	}
	if s.cfg.Redis.Enabled {
		rs, err := stream.NewRedisSink(ctx, s.cfg.Redis, s.runID)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		s.async = append(s.async, rs)
		s.closers = append(s.closers, rs.Close)
	}
	if len(s.async) > 0 {
		s.bus = eventbus.NewTypedBuffered[events.Event](busBuffer)
	}
	return nil
}

// closerOf returns the Close methods of sink and of the sinks it wraps.
func closerOf(sink events.Sink) []func() error {
	if m, ok := sink.(*events.MultiSink); ok {
		var out []func() error
		for _, inner := range m.Sinks {
			out = append(out, closerOf(inner)...)
		}
		return out
	}
	if c, ok := sink.(io.Closer); ok {
		return []func() error{c.Close}
	}
	return nil
}

// Expected returns the outcome checks declared by the scenario.
func (s *Service) Expected() sim.Expected { return s.expected }

// RunID identifies the run in MQTT payloads and Redis stream names.
func (s *Service) RunID() string { return s.runID }

// Store returns the event log, nil when it is disabled.
func (s *Service) Store() eventlog.Store { return s.store }

// Start launches the async publishers and the HTTP servers. They stop when
// ctx is canceled or the service is closed.
func (s *Service) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true
	ctx, s.cancelBg = context.WithCancel(ctx)
	for _, sink := range s.async {
		// collectors drain the bus after the run, they only stop on Close
		s.done = append(s.done, metrics.StartEventCollector(context.WithoutCancel(ctx), s.bus, sink))
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "prometheus"})
			}
		}()
	}
	if s.cfg.API.Addr != "" {
		go func() {
			if err := s.serveAPI(ctx); err != nil {
				s.log.Errorf("api server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "api"})
			}
		}()
	}
}

// Handler returns the routes of the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/status", status.NewStatsHandler(s.Sim.Engine(), s.cfg.API.Token))
	if s.store != nil {
		mux.Handle(s.cfg.API.Path, eventsapi.NewEventHandler(s.store, s.cfg.API.Token))
	}
	return mux
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run executes the simulation and waits for the async publishers to drain.
func (s *Service) Run(ctx context.Context) (sim.Summary, error) {
	s.Start(ctx)
	stopStatus := func() {}
	if s.reporter != nil {
		rctx, cancel := context.WithCancel(ctx)
		done := s.reporter.Start(rctx)
		stopStatus = func() { cancel(); <-done }
	}
	sum, err := s.Sim.Run(ctx)
	stopStatus()
	s.drain()
	if s.logSink != nil && s.logSink.Failed() > 0 {
		s.log.Warnf("%d events could not be written to the event log", s.logSink.Failed())
	}
	s.log.Infof("run %s finished at %.0f: %d passengers, %d arrived, %d stuck, %d rejected",
		s.runID, sum.EndTime, sum.Passengers, sum.Arrived, sum.Stuck, sum.Rejected)
	if err == nil {
		if kerr := s.recordKPI(sum); kerr != nil {
			s.log.Errorf("run history: %v", kerr)
			coremon.CaptureException(kerr, map[string]string{"module": "kpi"})
		}
	}
	return sum, err
}

// recordKPI appends the outcome to the run history when it is enabled.
func (s *Service) recordKPI(sum sim.Summary) error {
	if s.cfg.KPI.Path == "" {
		return nil
	}
	store, err := kpi.NewSQLiteStore(s.cfg.KPI.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Add(kpi.FromSummary(s.runID, time.Now(), sum))
}

// drain closes the bus so the collectors exit after the buffered events.
func (s *Service) drain() {
	if s.bus == nil {
		return
	}
	s.bus.Close()
	for _, d := range s.done {
		<-d
	}
	s.done = nil
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped by slow publishers", n)
	}
}

// Close stops the servers and releases every sink.
func (s *Service) Close() error {
	if s.cancelBg != nil {
		s.cancelBg()
	}
	s.drain()
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
