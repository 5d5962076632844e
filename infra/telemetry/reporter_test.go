package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/passenger"
)

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	docs   []Status
	err    error
}

func (f *fakePublisher) PublishJSON(suffix string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, suffix)
	f.docs = append(f.docs, v.(Status))
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type stats passenger.Stats

func (s stats) Stats() passenger.Stats { return passenger.Stats(s) }

func TestReporterPeriodicAndFinal(t *testing.T) {
	pub := &fakePublisher{}
	r := NewReporter(pub, stats{Mode: "taxi", Created: 3}, "run-1", 5*time.Millisecond)
	before := testutil.ToFloat64(reportsTotal)

	ctx, cancel := context.WithCancel(context.Background())
	done := r.Start(ctx)
	require.Eventually(t, func() bool { return pub.count() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	pub.mu.Lock()
	defer pub.mu.Unlock()
	last := pub.docs[len(pub.docs)-1]
	assert.True(t, last.Final)
	assert.False(t, pub.docs[0].Final)
	assert.Equal(t, "run-1", last.RunID)
	assert.Equal(t, int64(3), last.Created)
	assert.Equal(t, StatusTopic, pub.topics[0])
	assert.Equal(t, float64(len(pub.docs)), testutil.ToFloat64(reportsTotal)-before)
}

func TestReporterFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := NewReporter(pub, stats{}, "", 0)
	assert.Equal(t, 10*time.Second, r.interval)
	before := testutil.ToFloat64(reportFailures)
	r.report(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(reportFailures)-before)
}
