//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/app"
	"github.com/kilianp07/drt/config"
	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/test/util"
)

const scenario = `name: integration
mode: taxi
network:
  links:
    - {id: l1, from: n1, to: n2, travel_time: 60}
    - {id: l2, from: n2, to: n3, travel_time: 120}
    - {id: l3, from: n3, to: n1, travel_time: 60}
taxis:
  - {id: t1, link: l3}
passengers:
  - {id: p1, from: l1, to: l2, departure: 300, prebook_at: 0}
  - {id: p2, from: l3, to: l3, departure: 900}
`

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))
	cfg := &config.Config{}
	cfg.Simulation.Scenario = path
	cfg.EventLog.Backend = "none"
	return cfg
}

func TestMQTTPublishesRunEvents(t *testing.T) {
	util.RequireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer cleanup()

	var (
		mu     sync.Mutex
		topics []string
		types  []string
		status int
	)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("observer"))
	require.NoError(t, waitToken(sub.Connect()))
	defer sub.Disconnect(100)
	require.NoError(t, waitToken(sub.Subscribe("drt/#", 1, func(_ paho.Client, m paho.Message) {
		if strings.HasSuffix(m.Topic(), "/status") {
			mu.Lock()
			status++
			mu.Unlock()
			return
		}
		var rec events.Record
		if json.Unmarshal(m.Payload(), &rec) != nil {
			return
		}
		mu.Lock()
		topics = append(topics, m.Topic())
		types = append(types, rec.Type)
		mu.Unlock()
	})))

	cfg := baseConfig(t)
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.QoS = 1
	cfg.MQTT.StatusIntervalSeconds = 1
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	_, err = svc.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(types) == 4 && status > 0
	}, 5*time.Second, 50*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, topics, "drt/taxi/events/PersonEntersVehicle")
	assert.Contains(t, topics, "drt/taxi/events/PassengerRequestRejected")
	assert.ElementsMatch(t, []string{
		events.TypePersonEntersVehicle,
		events.TypePersonLeavesVehicle,
		events.TypeRequestRejected,
		events.TypePersonStuck,
	}, types)
}

func TestRedisStreamReceivesRunEvents(t *testing.T) {
	util.RequireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	addr, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Skipf("redis: %v", err)
	}
	defer cleanup()

	cfg := baseConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	_, err = svc.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	msgs, err := rdb.XRange(ctx, "drt:events:"+svc.RunID(), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, events.TypePersonEntersVehicle, msgs[0].Values["type"])
	assert.Equal(t, events.TypePersonStuck, msgs[3].Values["type"])
}

func waitToken(tok paho.Token) error {
	if !tok.WaitTimeout(5 * time.Second) {
		return context.DeadlineExceeded
	}
	return tok.Error()
}
