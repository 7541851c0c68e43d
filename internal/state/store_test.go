package state

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/state/mocks"
	"go.uber.org/mock/gomock"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil, nil)
	require.NoError(t, s.Seed(context.Background(), item.DefaultSeed()))
	return s
}

func TestStore_NilBusPublisher(t *testing.T) {
	var bus *events.Bus
	s := NewStore(bus, nil)

	assert.NotPanics(t, func() {
		require.NoError(t, s.Seed(context.Background(), item.DefaultSeed()))
		require.NoError(t, s.Apply(context.Background(), UpdateDownloadStatus{ItemID: 222, Status: item.StatusDownloading}))
	})
	assert.Equal(t, uint64(2), s.Current().Version())
}

func randomItems(r *rand.Rand, n int) []item.ListItem {
	out := make([]item.ListItem, n)
	for i := range out {
		id := int64(r.Intn(10))
		if r.Intn(2) == 0 {
			status := item.StatusToDownload
			if r.Intn(2) == 0 {
				status = item.StatusDownloading
			}
			out[i] = item.Downloadable{ID: id, Status: status}
		} else {
			out[i] = item.Empty{ID: id}
		}
	}
	return out
}

func TestStore_SeedPublishesInitialSnapshot(t *testing.T) {
	s := seededStore(t)

	snap := s.Current()
	assert.Equal(t, uint64(1), snap.Version())
	assert.Equal(t, item.DefaultSeed(), snap.Items())
}

func TestStore_SeedOnlyOnce(t *testing.T) {
	s := seededStore(t)
	err := s.Seed(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	other := NewStore(nil, nil)
	require.NoError(t, other.Apply(context.Background(), AddItems{}))
	assert.ErrorIs(t, other.Seed(context.Background(), item.DefaultSeed()), ErrAlreadySeeded)
}

func TestStore_AddItemsAppends(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		s := NewStore(nil, nil)
		base := randomItems(r, r.Intn(20))
		extra := randomItems(r, r.Intn(20))
		require.NoError(t, s.Apply(context.Background(), AddItems{Items: base}))
		require.NoError(t, s.Apply(context.Background(), AddItems{Items: extra}))

		want := append(append([]item.ListItem{}, base...), extra...)
		assert.Equal(t, len(want), s.Current().Len())
		for j := range want {
			assert.Equal(t, want[j], s.Current().At(j))
		}
	}
}

func TestStore_AddItemsAcceptsDuplicates(t *testing.T) {
	s := seededStore(t)
	dup := []item.ListItem{item.Empty{ID: 3}, item.Empty{ID: 3}, item.Downloadable{ID: 222, Status: item.StatusToDownload}}
	require.NoError(t, s.Apply(context.Background(), AddItems{Items: dup}))

	snap := s.Current()
	require.Equal(t, 38, snap.Len())
	assert.Equal(t, dup, snap.Items()[35:])
}

func TestStore_AddEmptySequenceStillPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	s := NewStore(pub, nil)

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
		sc, ok := e.(*events.SnapshotChanged)
		require.True(t, ok)
		assert.Equal(t, uint64(1), sc.Version)
		assert.Equal(t, ActionAddItems, sc.Action)
		assert.True(t, sc.Changed)
		assert.Empty(t, sc.Items)
		return nil
	})

	require.NoError(t, s.Apply(context.Background(), AddItems{}))
	assert.Equal(t, 0, s.Current().Len())
}

func TestStore_UpdateDownloadStatus(t *testing.T) {
	s := seededStore(t)
	before := s.Current()

	require.NoError(t, s.Apply(context.Background(), UpdateDownloadStatus{ItemID: 224, Status: item.StatusDownloading}))

	after := s.Current()
	require.Equal(t, before.Len(), after.Len())
	for i := 0; i < after.Len(); i++ {
		if i == 2 {
			assert.Equal(t, item.Downloadable{ID: 224, Status: item.StatusDownloading}, after.At(i))
			continue
		}
		assert.Equal(t, before.At(i), after.At(i), "index %d", i)
	}
	assert.Equal(t, item.StatusToDownload, before.At(2).(item.Downloadable).Status, "old snapshot untouched")
}

func TestStore_UpdateDownloadStatusHitsLastMatch(t *testing.T) {
	s := NewStore(nil, nil)
	items := []item.ListItem{
		item.Downloadable{ID: 5, Status: item.StatusToDownload},
		item.Empty{ID: 1},
		item.Downloadable{ID: 5, Status: item.StatusToDownload},
		item.Empty{ID: 5},
	}
	require.NoError(t, s.Seed(context.Background(), items))
	require.NoError(t, s.Apply(context.Background(), UpdateDownloadStatus{ItemID: 5, Status: item.StatusDownloading}))

	assert.Equal(t, []item.ListItem{
		item.Downloadable{ID: 5, Status: item.StatusToDownload},
		item.Empty{ID: 1},
		item.Downloadable{ID: 5, Status: item.StatusDownloading},
		item.Empty{ID: 5},
	}, s.Current().Items())
}

func TestStore_UpdateUnknownIDIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	s := NewStore(pub, nil)

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, s.Seed(context.Background(), item.DefaultSeed()))
	before := s.Current()

	// id 3 exists only as an empty row and must not be matched
	for _, id := range []int64{999, 3} {
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
			sc := e.(*events.SnapshotChanged)
			assert.False(t, sc.Changed)
			assert.Equal(t, ActionUpdateDownloadStatus, sc.Action)
			return nil
		})
		require.NoError(t, s.Apply(context.Background(), UpdateDownloadStatus{ItemID: id, Status: item.StatusDownloading}))
	}

	after := s.Current()
	assert.True(t, before.Equal(after))
	assert.Equal(t, before.Version()+2, after.Version())
}

func TestStore_PublishFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	s := NewStore(pub, nil)

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("bus down"))

	require.NoError(t, s.Apply(context.Background(), AddItems{Items: []item.ListItem{item.Empty{ID: 1}}}))
	assert.Equal(t, 1, s.Current().Len())
}

func TestStore_RejectsUnknownActions(t *testing.T) {
	s := NewStore(nil, nil)

	assert.ErrorIs(t, s.Apply(context.Background(), nil), ErrUnknownAction)
	assert.ErrorIs(t, s.Apply(context.Background(), &AddItems{}), ErrUnknownAction)
	assert.Equal(t, uint64(0), s.Current().Version())
}

func TestStore_ConcurrentApplyIsSerialized(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer bus.Close()
	ch := bus.Subscribe(events.EventSnapshotChanged, 200)

	s := NewStore(bus, nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Apply(context.Background(), AddItems{Items: []item.ListItem{item.Empty{ID: int64(n)}}})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, s.Current().Len())
	assert.Equal(t, uint64(100), s.Current().Version())

	// publication order matches version order, and each snapshot grows by one row
	require.Len(t, ch, 100)
	for v := uint64(1); v <= 100; v++ {
		sc := (<-ch).(*events.SnapshotChanged)
		assert.Equal(t, v, sc.Version)
		assert.Len(t, sc.Items, int(v))
	}
}

func TestSnapshot_ItemsIsACopy(t *testing.T) {
	s := seededStore(t)
	snap := s.Current()

	items := snap.Items()
	items[0] = item.Empty{ID: 1000}

	assert.Equal(t, item.Downloadable{ID: 222, Status: item.StatusToDownload}, snap.At(0))
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	var empty Snapshot
	data, err := empty.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":0,"items":[]}`, string(data))
}

func TestSnapshot_FindDownloadable(t *testing.T) {
	snap := NewSnapshot(3, []item.ListItem{
		item.Downloadable{ID: 1, Status: item.StatusToDownload},
		item.Downloadable{ID: 1, Status: item.StatusDownloading},
		item.Empty{ID: 1},
	})

	d, idx, ok := snap.FindDownloadable(1)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, item.StatusDownloading, d.Status)

	_, _, ok = snap.FindDownloadable(2)
	assert.False(t, ok)
	assert.Equal(t, uint64(3), snap.Version())
}
