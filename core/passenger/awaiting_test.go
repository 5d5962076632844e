package passenger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/drt/core/model"
)

func TestAwaitingStoreRetrieveOnce(t *testing.T) {
	s := NewAwaitingPickupStore()
	req := &model.Request{ID: "r1"}
	require.NoError(t, s.Store(req, Continuation{Driver: newDriver("d1", "l1"), ArrivalTime: 5}))
	assert.True(t, s.Has("r1"))

	cont, ok := s.Retrieve("r1")
	require.True(t, ok)
	assert.Equal(t, 5.0, cont.ArrivalTime)
	_, ok = s.Retrieve("r1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestAwaitingStoreSameDriverKeepsArrival(t *testing.T) {
	s := NewAwaitingPickupStore()
	req := &model.Request{ID: "r1"}
	stop := &fakeStop{}
	require.NoError(t, s.Store(req, Continuation{Driver: newDriver("d1", "l1"), ArrivalTime: 5}))
	require.NoError(t, s.Store(req, Continuation{Stop: stop, Driver: newDriver("d1", "l1"), ArrivalTime: 9}))
	assert.Equal(t, 1, s.Len())
	cont, _ := s.Retrieve("r1")
	assert.Equal(t, 5.0, cont.ArrivalTime)
	assert.Same(t, stop, cont.Stop)
}

func TestAwaitingStoreRejects(t *testing.T) {
	s := NewAwaitingPickupStore()
	req := &model.Request{ID: "r1"}
	require.NoError(t, s.Store(req, Continuation{Driver: newDriver("d1", "l1")}))
	assert.ErrorIs(t, s.Store(req, Continuation{Driver: newDriver("d2", "l1")}), ErrPickupAlreadyAwaiting)

	rejected := &model.Request{ID: "r2"}
	rejected.Reject("gone")
	assert.ErrorIs(t, s.Store(rejected, Continuation{Driver: newDriver("d1", "l1")}), ErrRejectedRequest)
	assert.False(t, s.Has("r2"))
}
