package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/rowsync/internal/download/mocks"
	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/reconcile"
	"github.com/vmunix/rowsync/internal/schedule"
	"github.com/vmunix/rowsync/internal/state"
	"go.uber.org/mock/gomock"
)

const testDelay = 30 * time.Millisecond

func newSeededStore(t *testing.T, bus *events.Bus) *state.Store {
	t.Helper()
	store := state.NewStore(bus, nil)
	require.NoError(t, store.Seed(context.Background(), item.DefaultSeed()))
	return store
}

func newSimulator(t *testing.T, store Store, bus *events.Bus) *Simulator {
	t.Helper()
	sched := schedule.New(nil)
	t.Cleanup(func() { _ = sched.Close() })
	return NewSimulator(store, bus, sched, testDelay, nil)
}

func waitFor(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSimulator_DefaultDelay(t *testing.T) {
	sim := NewSimulator(nil, nil, schedule.New(nil), 0, nil)
	assert.Equal(t, DefaultDelay, sim.Delay())
}

func TestSimulator_DownloadThenRevert(t *testing.T) {
	bus := events.NewBus(nil, nil)
	t.Cleanup(func() { _ = bus.Close() })
	snapshots := bus.Subscribe(events.EventSnapshotChanged, 10)
	reverted := bus.Subscribe(events.EventDownloadReverted, 1)

	store := newSeededStore(t, bus)
	seed := (<-snapshots).(*events.SnapshotChanged)
	sim := newSimulator(t, store, bus)

	require.NoError(t, sim.Start(context.Background(), 222))

	downloading := waitFor(t, snapshots).(*events.SnapshotChanged)
	assert.Equal(t, item.Downloadable{ID: 222, Status: item.StatusDownloading}, downloading.Items[0])

	diff := reconcile.Diff(seed.Items, downloading.Items)
	assert.Equal(t, []reconcile.Pair{{Old: 0, New: 0}}, diff.Changed)
	assert.Empty(t, diff.Inserted)
	assert.Empty(t, diff.Removed)

	back := waitFor(t, snapshots).(*events.SnapshotChanged)
	assert.Equal(t, item.Downloadable{ID: 222, Status: item.StatusToDownload}, back.Items[0])
	assert.Equal(t, int64(222), waitFor(t, reverted).(*events.DownloadReverted).ItemID)
	assert.True(t, reconcile.Diff(seed.Items, back.Items).Empty())
}

func TestSimulator_StartedEventCarriesRevertTime(t *testing.T) {
	bus := events.NewBus(nil, nil)
	t.Cleanup(func() { _ = bus.Close() })
	started := bus.Subscribe(events.EventDownloadStarted, 1)

	store := newSeededStore(t, bus)
	sim := newSimulator(t, store, bus)

	before := time.Now()
	require.NoError(t, sim.Start(context.Background(), 222))

	e := waitFor(t, started).(*events.DownloadStarted)
	assert.Equal(t, int64(222), e.ItemID)
	assert.Equal(t, testDelay.Milliseconds(), e.RevertAfterMS)
	assert.False(t, e.RevertAt.Before(before.Add(testDelay)))
	assert.WithinDuration(t, time.Now().Add(testDelay), e.RevertAt, time.Second)
}

func TestSimulator_RevertSurvivesCallerCancel(t *testing.T) {
	store := newSeededStore(t, nil)
	sim := newSimulator(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sim.Start(ctx, 223))
	cancel()

	assert.Eventually(t, func() bool {
		d, _, _ := store.Current().FindDownloadable(223)
		return d.Status == item.StatusToDownload
	}, time.Second, 5*time.Millisecond)
}

func TestSimulator_UnknownItem(t *testing.T) {
	bus := events.NewBus(nil, nil)
	t.Cleanup(func() { _ = bus.Close() })
	ignored := bus.Subscribe(events.EventDownloadIgnored, 1)

	store := newSeededStore(t, nil)
	sim := newSimulator(t, store, bus)

	// id 5 exists only as an empty row
	err := sim.Start(context.Background(), 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, "not_found", waitFor(t, ignored).(*events.DownloadIgnored).Reason)
	assert.Equal(t, uint64(1), store.Current().Version(), "no action applied")
}

func TestSimulator_AlreadyDownloading(t *testing.T) {
	store := newSeededStore(t, nil)
	sim := newSimulator(t, store, nil)

	require.NoError(t, sim.Start(context.Background(), 224))
	err := sim.Start(context.Background(), 224)
	assert.ErrorIs(t, err, ErrAlreadyDownloading)
	assert.Equal(t, 1, sim.sched.Pending())
}

func TestSimulator_CancelKeepsDownloading(t *testing.T) {
	store := newSeededStore(t, nil)
	sim := newSimulator(t, store, nil)

	require.NoError(t, sim.Start(context.Background(), 225))
	assert.True(t, sim.Cancel(225))

	time.Sleep(3 * testDelay)
	d, _, ok := store.Current().FindDownloadable(225)
	require.True(t, ok)
	assert.Equal(t, item.StatusDownloading, d.Status)
}

func TestSimulator_AppliesActionsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	sim := newSimulator(t, store, nil)

	snap := state.NewSnapshot(1, []item.ListItem{item.Downloadable{ID: 9, Status: item.StatusToDownload}})
	reverted := make(chan struct{})

	store.EXPECT().Current().Return(snap)
	gomock.InOrder(
		store.EXPECT().Apply(gomock.Any(), state.UpdateDownloadStatus{ItemID: 9, Status: item.StatusDownloading}).Return(nil),
		store.EXPECT().Apply(gomock.Any(), state.UpdateDownloadStatus{ItemID: 9, Status: item.StatusToDownload}).
			DoAndReturn(func(context.Context, state.Action) error {
				close(reverted)
				return nil
			}),
	)

	require.NoError(t, sim.Start(context.Background(), 9))
	select {
	case <-reverted:
	case <-time.After(time.Second):
		t.Fatal("revert never applied")
	}
}

func TestSimulator_ApplyErrorDoesNotSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	sim := newSimulator(t, store, nil)

	store.EXPECT().Current().Return(state.NewSnapshot(1, []item.ListItem{item.Downloadable{ID: 9, Status: item.StatusToDownload}}))
	store.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	err := sim.Start(context.Background(), 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start download")
	assert.Equal(t, 0, sim.sched.Pending())
}
