package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/drt/core/events"
)

func TestQueryMatch(t *testing.T) {
	rec := events.Record{Time: 100, Type: events.TypePersonStuck, Mode: "drt", AgentID: "p1"}
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"type", Query{Type: events.TypePersonStuck}, true},
		{"other type", Query{Type: events.TypeRequestRejected}, false},
		{"mode", Query{Mode: "taxi"}, false},
		{"agent", Query{AgentID: "p1"}, true},
		{"other agent", Query{AgentID: "p2"}, false},
		{"request", Query{RequestID: "drt_1"}, false},
		{"window", Query{From: 50, To: 100}, true},
		{"before window", Query{From: 101}, false},
		{"after window", Query{To: 99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Match(rec))
		})
	}
}

type failingStore struct{ appended int }

func (f *failingStore) Append(context.Context, events.Record) error {
	f.appended++
	return errors.New("disk full")
}
func (f *failingStore) Query(context.Context, Query) ([]events.Record, error) { return nil, nil }
func (f *failingStore) Close() error                                          { return nil }

func TestSinkCountsFailures(t *testing.T) {
	st := &failingStore{}
	s := NewSink(st, nil)
	s.ProcessEvent(events.PersonStuck{})
	s.ProcessEvent(events.PersonStuck{})
	assert.Equal(t, 2, st.appended)
	assert.Equal(t, uint64(2), s.Failed())
}
