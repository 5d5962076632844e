// Package telemetry periodically publishes the engine state while a run is
// in progress.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/drt/core/monitoring"
	"github.com/kilianp07/drt/core/passenger"
	"github.com/kilianp07/drt/infra/logger"
)

// StatusTopic is appended to <prefix>/<mode>/ by the MQTT publisher.
const StatusTopic = "status"

// Publisher sends a JSON document to a topic suffix.
type Publisher interface {
	PublishJSON(suffix string, v any) error
}

// StatsSource returns a snapshot of the engine state.
type StatsSource interface {
	Stats() passenger.Stats
}

// Status is the published document.
type Status struct {
	RunID    string    `json:"run_id,omitempty"`
	WallTime time.Time `json:"wall_time"`
	Final    bool      `json:"final"`
	passenger.Stats
}

var (
	reportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_status_reports_total",
		Help: "Number of engine status reports published",
	})
	reportFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_status_report_failures_total",
		Help: "Number of engine status reports that could not be published",
	})
	lastReport = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_last_report_timestamp_seconds",
		Help: "Unix timestamp of the last published status report",
	})
)

func init() {
	prometheus.MustRegister(reportsTotal, reportFailures, lastReport)
}

// Reporter publishes engine status at a fixed interval.
type Reporter struct {
	pub      Publisher
	src      StatsSource
	runID    string
	interval time.Duration
	log      logger.Logger
	now      func() time.Time
}

// NewReporter creates a Reporter. A non-positive interval defaults to 10s.
func NewReporter(pub Publisher, src StatsSource, runID string, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Reporter{pub: pub, src: src, runID: runID, interval: interval, log: logger.New("telemetry"), now: time.Now}
}

// Start reports until ctx is done, then publishes a final report. The
// returned channel is closed once the final report was sent.
func (r *Reporter) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.report(false)
			case <-ctx.Done():
				r.report(true)
				return
			}
		}
	}()
	return done
}

func (r *Reporter) report(final bool) {
	st := Status{RunID: r.runID, WallTime: r.now().UTC(), Final: final, Stats: r.src.Stats()}
	if err := r.pub.PublishJSON(StatusTopic, st); err != nil {
		reportFailures.Inc()
		r.log.Errorf("status report: %v", err)
		monitoring.CaptureException(err, map[string]string{"module": "telemetry"})
		return
	}
	reportsTotal.Inc()
	lastReport.SetToCurrentTime()
}
