package eventlog

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreeventlog "github.com/kilianp07/drt/core/eventlog"
	"github.com/kilianp07/drt/core/events"
	"github.com/kilianp07/drt/core/model"
)

func sampleRecords() []events.Record {
	return []events.Record{
		events.ToRecord(events.RequestRejected{Time: 10, Mode: "drt", RequestID: "drt_0", Cause: "no_vehicle"}),
		events.ToRecord(events.PersonStuck{Time: 10, Mode: "drt", AgentID: "p1", LinkID: "l1"}),
		events.ToRecord(events.PersonEntersVehicle{Time: 60, AgentID: "p2", VehicleID: "v1"}),
		events.ToRecord(events.PersonLeavesVehicle{Time: 300, AgentID: "p2", VehicleID: "v1"}),
	}
}

func openStores(t *testing.T) map[string]coreeventlog.Store {
	t.Helper()
	dir := t.TempDir()
	plain, err := NewJSONLStore(filepath.Join(dir, "plain", "events.jsonl"))
	require.NoError(t, err)
	rot, err := NewRotatingJSONLStore(filepath.Join(dir, "rot", "events.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	sq, err := NewSQLiteStore(filepath.Join(dir, "events.db"))
	require.NoError(t, err)
	stores := map[string]coreeventlog.Store{"jsonl": plain, "rotating": rot, "sqlite": sq}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoresQuery(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range sampleRecords() {
				require.NoError(t, store.Append(ctx, r))
			}

			all, err := store.Query(ctx, coreeventlog.Query{})
			require.NoError(t, err)
			assert.Equal(t, sampleRecords(), all)

			byAgent, err := store.Query(ctx, coreeventlog.Query{AgentID: "p2"})
			require.NoError(t, err)
			assert.Len(t, byAgent, 2)

			byType, err := store.Query(ctx, coreeventlog.Query{Type: events.TypeRequestRejected})
			require.NoError(t, err)
			require.Len(t, byType, 1)
			assert.Equal(t, "no_vehicle", byType[0].Cause)

			window, err := store.Query(ctx, coreeventlog.Query{From: 20, To: 100})
			require.NoError(t, err)
			require.Len(t, window, 1)
			assert.Equal(t, events.TypePersonEntersVehicle, window[0].Type)

			limited, err := store.Query(ctx, coreeventlog.Query{Mode: "drt", Limit: 1})
			require.NoError(t, err)
			assert.Len(t, limited, 1)
		})
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cause := strings.Repeat("x", 4096)
	// about 1.2 MB, enough for a single rotation
	const n = 300
	for i := 0; i < n; i++ {
		rec := events.Record{Time: float64(i), Type: events.TypeRequestRejected, RequestID: model.RequestID("drt_" + strconv.Itoa(i)), Cause: cause}
		require.NoError(t, store.Append(context.Background(), rec))
	}
	backups, _ := filepath.Glob(filepath.Join(dir, "events-*.jsonl"))
	require.NotEmpty(t, backups, "expected rotated files")

	out, err := store.Query(context.Background(), coreeventlog.Query{})
	require.NoError(t, err)
	require.Len(t, out, n)
	for i := 1; i < len(out); i++ {
		require.Less(t, out[i-1].Time, out[i].Time, "records out of order")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(Config{Path: filepath.Join(dir, "a.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 10})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Config{Backend: "sqlite", Path: filepath.Join(dir, "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Config{Backend: "csv"})
	assert.Error(t, err)
	_, err = Open(Config{Path: "x.jsonl", MaxBackups: -1})
	assert.Error(t, err)
}

func TestSinkWritesStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	sink := coreeventlog.NewSink(store, nil)
	sink.ProcessEvent(events.PersonStuck{Time: 5, AgentID: "p1"})

	out, err := store.Query(context.Background(), coreeventlog.Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	ev, err := events.FromRecord(out[0])
	require.NoError(t, err)
	assert.Equal(t, events.PersonStuck{Time: 5, AgentID: "p1"}, ev)
}
