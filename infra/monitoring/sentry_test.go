package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/config"
	coremon "github.com/kilianp07/drt/core/monitoring"
)

type captured struct {
	mu     sync.Mutex
	events []*sentry.Event
}

// keep records the event and drops it so nothing leaves the process.
func (c *captured) keep(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryMonitorCapturesTags(t *testing.T) {
	tr := &captured{}
	m, err := newSentryMonitor(config.SentryConfig{
		DSN:  "https://public@sentry.example.com/1",
		Tags: map[string]string{"run": "r1"},
	}, tr.keep)
	require.NoError(t, err)

	m.CaptureException(nil, nil)
	m.CaptureException(errors.New("two vehicles for one pickup"), map[string]string{"mode": "drt"})
	m.Flush(time.Second)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.events, 1)
	assert.Equal(t, "r1", tr.events[0].Tags["run"])
	assert.Equal(t, "drt", tr.events[0].Tags["mode"])
}
