package eventlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	coreeventlog "github.com/kilianp07/drt/core/eventlog"
	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/model"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS passenger_events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        sim_time REAL NOT NULL,
        type TEXT NOT NULL,
        mode TEXT,
        request_id TEXT,
        agent_id TEXT,
        vehicle_id TEXT,
        link_id TEXT,
        to_link_id TEXT,
        cause TEXT
    );
    CREATE INDEX IF NOT EXISTS passenger_events_agent ON passenger_events(agent_id);
    CREATE INDEX IF NOT EXISTS passenger_events_request ON passenger_events(request_id);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec events.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passenger_events (sim_time, type, mode, request_id, agent_id, vehicle_id, link_id, to_link_id, cause)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time, rec.Type, rec.Mode, string(rec.RequestID), string(rec.AgentID),
		string(rec.VehicleID), string(rec.LinkID), string(rec.ToLinkID), rec.Cause)
	return err
}

// Query returns records matching q in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q coreeventlog.Query) ([]events.Record, error) {
	var args []any
	query := `SELECT sim_time, type, mode, request_id, agent_id, vehicle_id, link_id, to_link_id, cause
        FROM passenger_events WHERE sim_time >= ?`
	args = append(args, q.From)
	if q.To > 0 {
		query += ` AND sim_time <= ?`
		args = append(args, q.To)
	}
	if q.Type != "" {
		query += ` AND type = ?`
		args = append(args, q.Type)
	}
	if q.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, q.Mode)
	}
	if q.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, string(q.AgentID))
	}
	if q.RequestID != "" {
		query += ` AND request_id = ?`
		args = append(args, string(q.RequestID))
	}
	query += ` ORDER BY id`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []events.Record
	for rows.Next() {
		var (
			r                                       events.Record
			reqID, agentID, vehID, linkID, toLinkID string
		)
		if err := rows.Scan(&r.Time, &r.Type, &r.Mode, &reqID, &agentID, &vehID, &linkID, &toLinkID, &r.Cause); err != nil {
			return nil, err
		}
		r.RequestID = model.RequestID(reqID)
		r.AgentID = model.AgentID(agentID)
		r.VehicleID = model.VehicleID(vehID)
		r.LinkID = model.LinkID(linkID)
		r.ToLinkID = model.LinkID(toLinkID)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
