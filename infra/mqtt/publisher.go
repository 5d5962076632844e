package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/monitoring"
	"github.com/kilianp07/drt/infra/logger"
)

// Message is the JSON payload published for every notification.
type Message struct {
	MessageID string `json:"message_id"`
	RunID     string `json:"run_id,omitempty"`
	events.Record
}

// Publisher publishes engine notifications to
// <prefix>/<mode>/events/<type>.
type Publisher struct {
	cli        pahoClient
	prefix     string
	mode       string
	runID      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewPublisher connects to the broker. mode is used in the topic of events
// that do not carry one themselves.
func NewPublisher(cfg Config, mode, runID string) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		mode:       mode,
		runID:      runID,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// Topic returns the topic a record is published on.
func (p *Publisher) Topic(r events.Record) string {
	mode := r.Mode
	if mode == "" {
		mode = p.mode
	}
	return fmt.Sprintf("%s/%s/events/%s", p.prefix, mode, r.Type)
}

// Publish sends ev, retrying with exponential backoff.
func (p *Publisher) Publish(ev events.Event) error {
	rec := events.ToRecord(ev)
	payload, err := json.Marshal(Message{MessageID: uuid.NewString(), RunID: p.runID, Record: rec})
	if err != nil {
		return err
	}
	return p.publish(p.Topic(rec), payload)
}

// PublishJSON sends v as JSON to <prefix>/<mode>/<suffix>.
func (p *Publisher) PublishJSON(suffix string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.publish(fmt.Sprintf("%s/%s/%s", p.prefix, p.mode, suffix), payload)
}

// RunID returns the run id added to every message.
func (p *Publisher) RunID() string { return p.runID }

func (p *Publisher) publish(topic string, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// ProcessEvent publishes ev and reports failures to monitoring.
func (p *Publisher) ProcessEvent(ev events.Event) {
	if err := p.Publish(ev); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "event": ev.Type()})
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
