// Package stream appends engine notifications to a Redis stream so that
// downstream consumers can replay a run with XREAD or consumer groups.
package stream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/monitoring"
	"github.com/kilianp07/drt/infra/logger"
)

// Config defines the Redis stream settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Stream is the key prefix; the run id is appended to it.
	Stream string `json:"stream"`
	// MaxLen caps the stream length approximately. 0 keeps everything.
	MaxLen int64 `json:"max_len"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Stream == "" {
		c.Stream = "drt:events"
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.MaxLen < 0 {
		return fmt.Errorf("redis max_len must not be negative")
	}
	return nil
}

// streamClient is the subset of redis.Cmdable used by RedisSink.
type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink adds one stream entry per notification.
type RedisSink struct {
	cli    streamClient
	closer func() error
	stream string
	maxLen int64
	log    logger.Logger
}

// NewRedisSink connects to Redis and checks the connection.
func NewRedisSink(ctx context.Context, cfg Config, runID string) (*RedisSink, error) {
	cfg.SetDefaults()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	s := newRedisSink(rdb, cfg, runID)
	s.closer = rdb.Close
	return s, nil
}

func newRedisSink(cli streamClient, cfg Config, runID string) *RedisSink {
	stream := cfg.Stream
	if runID != "" {
		stream += ":" + runID
	}
	return &RedisSink{cli: cli, stream: stream, maxLen: cfg.MaxLen, log: logger.New("redis-stream")}
}

// Stream returns the stream key written to.
func (s *RedisSink) Stream() string { return s.stream }

// Add appends ev to the stream and returns the entry id.
func (s *RedisSink) Add(ctx context.Context, ev events.Event) (string, error) {
	r := events.ToRecord(ev)
	values := map[string]any{
		"type":     r.Type,
		"sim_time": strconv.FormatFloat(r.Time, 'f', -1, 64),
	}
	for k, v := range map[string]string{
		"mode":       r.Mode,
		"request_id": string(r.RequestID),
		"agent_id":   string(r.AgentID),
		"vehicle_id": string(r.VehicleID),
		"link_id":    string(r.LinkID),
		"to_link_id": string(r.ToLinkID),
		"cause":      r.Cause,
	} {
		if v != "" {
			values[k] = v
		}
	}
	args := &redis.XAddArgs{Stream: s.stream, Values: values}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.cli.XAdd(ctx, args).Result()
}

// ProcessEvent adds ev with a short timeout; failures are logged and
// reported to monitoring.
func (s *RedisSink) ProcessEvent(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := s.Add(ctx, ev); err != nil {
		s.log.Errorf("xadd %s: %v", s.stream, err)
		monitoring.CaptureException(err, map[string]string{"module": "redis", "event": ev.Type()})
	}
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
