package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/infra/logger"
)

const influxMeasurement = "passenger_event"

// InfluxSink writes one point per passenger notification. Simulation
// seconds are mapped onto wall clock time starting at Epoch.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	epoch    time.Time
	log      logger.Logger
}

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Epoch is the RFC 3339 wall clock time of simulation second 0.
	// It defaults to the current day at midnight UTC.
	Epoch string `json:"epoch"`
}

func (c InfluxConfig) epochTime() (time.Time, error) {
	if c.Epoch == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse(time.RFC3339, c.Epoch)
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	epoch, err := cfg.epochTime()
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		epoch:    epoch,
		log:      logger.New("influx-sink"),
	}, nil
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) (events.Sink, error) {
	sink, err := NewInfluxSink(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return events.NopSink{}, nil
	}
	return sink, nil
}

// ProcessEvent writes ev. Write errors are logged because the engine
// never waits on observability.
func (s *InfluxSink) ProcessEvent(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(ctx, eventPoint(events.ToRecord(ev), s.epoch)); err != nil {
		s.log.Errorf("influx write %s: %v", ev.Type(), err)
	}
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func eventPoint(r events.Record, epoch time.Time) *write.Point {
	p := write.NewPointWithMeasurement(influxMeasurement).
		AddTag("type", r.Type)
	if r.Mode != "" {
		p = p.AddTag("mode", r.Mode)
	}
	if r.Cause != "" {
		p = p.AddTag("cause", r.Cause)
	}
	p = p.AddField("sim_time", r.Time)
	if r.RequestID != "" {
		p = p.AddField("request_id", string(r.RequestID))
	}
	if r.AgentID != "" {
		p = p.AddField("agent_id", string(r.AgentID))
	}
	if r.VehicleID != "" {
		p = p.AddField("vehicle_id", string(r.VehicleID))
	}
	if r.LinkID != "" {
		p = p.AddField("link_id", string(r.LinkID))
	}
	return p.SetTime(epoch.Add(time.Duration(r.Time * float64(time.Second))))
}
