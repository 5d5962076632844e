// Package kpi keeps the outcome of every run in a SQLite database so runs
// of the same scenario can be compared over time.
package kpi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/drt/sim"
)

// Config selects the run history database. An empty path disables it.
type Config struct {
	Path string `json:"path"`
}

// RunRecord is the stored outcome of one run.
type RunRecord struct {
	RunID      string         `json:"run_id"`
	Scenario   string         `json:"scenario"`
	Mode       string         `json:"mode"`
	FinishedAt time.Time      `json:"finished_at"`
	Passengers int            `json:"passengers"`
	Arrived    int            `json:"arrived"`
	Stuck      int            `json:"stuck"`
	Rejected   int            `json:"rejected"`
	PickedUp   int            `json:"picked_up"`
	DroppedOff int            `json:"dropped_off"`
	MeanWait   float64        `json:"mean_wait_seconds"`
	MaxWait    float64        `json:"max_wait_seconds"`
	Rejections map[string]int `json:"rejections,omitempty"`
}

// FromSummary builds the record of a finished run.
func FromSummary(runID string, finished time.Time, s sim.Summary) RunRecord {
	return RunRecord{
		RunID:      runID,
		Scenario:   s.Scenario,
		Mode:       s.Mode,
		FinishedAt: finished.UTC(),
		Passengers: s.Passengers,
		Arrived:    s.Arrived,
		Stuck:      s.Stuck,
		Rejected:   s.Rejected,
		PickedUp:   s.PickedUp,
		DroppedOff: s.DroppedOff,
		MeanWait:   s.MeanWait,
		MaxWait:    s.MaxWait,
		Rejections: s.Rejections,
	}
}

// SQLiteStore persists run records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS run_kpi (
        run_id TEXT PRIMARY KEY,
        scenario TEXT,
        mode TEXT,
        finished_at INTEGER,
        passengers INTEGER,
        arrived INTEGER,
        stuck INTEGER,
        rejected INTEGER,
        picked_up INTEGER,
        dropped_off INTEGER,
        mean_wait REAL,
        max_wait REAL,
        rejections TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_run_kpi_scenario ON run_kpi(scenario, finished_at);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts the record, replacing a previous record of the same run.
func (s *SQLiteStore) Add(r RunRecord) error {
	causes, err := json.Marshal(r.Rejections)
	if err != nil {
		return fmt.Errorf("encode rejections: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO run_kpi (run_id, scenario, mode, finished_at, passengers, arrived,
            stuck, rejected, picked_up, dropped_off, mean_wait, max_wait, rejections)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            scenario = excluded.scenario,
            mode = excluded.mode,
            finished_at = excluded.finished_at,
            passengers = excluded.passengers,
            arrived = excluded.arrived,
            stuck = excluded.stuck,
            rejected = excluded.rejected,
            picked_up = excluded.picked_up,
            dropped_off = excluded.dropped_off,
            mean_wait = excluded.mean_wait,
            max_wait = excluded.max_wait,
            rejections = excluded.rejections`,
		r.RunID, r.Scenario, r.Mode, r.FinishedAt.UnixMilli(), r.Passengers, r.Arrived,
		r.Stuck, r.Rejected, r.PickedUp, r.DroppedOff, r.MeanWait, r.MaxWait, string(causes))
	return err
}

// Query returns the runs of scenario finished in [start,end], oldest
// first. An empty scenario matches every run and a zero end is open ended.
func (s *SQLiteStore) Query(scenario string, start, end time.Time) ([]RunRecord, error) {
	query := `SELECT run_id, scenario, mode, finished_at, passengers, arrived, stuck, rejected,
        picked_up, dropped_off, mean_wait, max_wait, rejections FROM run_kpi WHERE finished_at >= ?`
	args := []any{start.UnixMilli()}
	if !end.IsZero() {
		query += ` AND finished_at <= ?`
		args = append(args, end.UnixMilli())
	}
	if scenario != "" {
		query += ` AND scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY finished_at, run_id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunRecord
	for rows.Next() {
		var (
			r      RunRecord
			ts     int64
			causes string
		)
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.Mode, &ts, &r.Passengers, &r.Arrived, &r.Stuck,
			&r.Rejected, &r.PickedUp, &r.DroppedOff, &r.MeanWait, &r.MaxWait, &causes); err != nil {
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(ts).UTC()
		if causes != "" && causes != "null" {
			if err := json.Unmarshal([]byte(causes), &r.Rejections); err != nil {
				return nil, fmt.Errorf("decode rejections of %s: %w", r.RunID, err)
			}
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
