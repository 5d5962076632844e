// Package eventlog defines the persistent log of passenger notifications.
// Stores live in infra/eventlog; Sink adapts any Store to events.Sink.
package eventlog

import (
	"context"

	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/model"
)

// Query defines filters for retrieving records. Zero values match
// everything; To <= 0 leaves the time window open ended.
type Query struct {
	Type      string
	Mode      string
	AgentID   model.AgentID
	RequestID model.RequestID
	From      float64
	To        float64
	Limit     int
}

// Match reports whether r passes every filter of q except Limit.
func (q Query) Match(r events.Record) bool {
	switch {
	case q.Type != "" && r.Type != q.Type:
		return false
	case q.Mode != "" && r.Mode != q.Mode:
		return false
	case q.AgentID != "" && r.AgentID != q.AgentID:
		return false
	case q.RequestID != "" && r.RequestID != q.RequestID:
		return false
	case r.Time < q.From:
		return false
	case q.To > 0 && r.Time > q.To:
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec events.Record) error
	Query(ctx context.Context, q Query) ([]events.Record, error)
	Close() error
}
