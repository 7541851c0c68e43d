package events

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.JournalSQL)
	require.NoError(t, err)
	return db
}

func TestJournal_Append(t *testing.T) {
	j := NewJournal(setupTestDB(t))

	e := &DownloadStarted{
		BaseEvent:     NewBaseEvent(EventDownloadStarted, EntityItem, 222),
		ItemID:        222,
		RevertAfterMS: 5000,
	}
	id, err := j.Append(e)
	require.NoError(t, err)
	assert.Positive(t, id)

	rows, err := j.ForItem(222)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, EventDownloadStarted, rows[0].EventType)
	assert.Equal(t, j.RunID(), rows[0].RunID)
	assert.Contains(t, rows[0].Payload, `"revert_after_ms":5000`)
}

func TestJournal_RunIDIsUnique(t *testing.T) {
	db := setupTestDB(t)
	a := NewJournal(db)
	b := NewJournal(db)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestJournal_Recent(t *testing.T) {
	db := setupTestDB(t)
	first := NewJournal(db)
	second := NewJournal(db)

	for v := uint64(1); v <= 3; v++ {
		_, err := first.Append(NewSnapshotChanged(v, "add_items", true, nil))
		require.NoError(t, err)
	}
	_, err := second.Append(NewSnapshotChanged(1, "add_items", true, nil))
	require.NoError(t, err)

	all, err := first.Recent("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	latest, err := first.Recent("", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Less(t, latest[0].ID, latest[1].ID, "oldest first")
	assert.Equal(t, second.RunID(), latest[1].RunID)

	onlyFirst, err := first.Recent(first.RunID(), 10)
	require.NoError(t, err)
	assert.Len(t, onlyFirst, 3)
}

func TestJournal_Prune(t *testing.T) {
	j := NewJournal(setupTestDB(t))

	old := &DownloadReverted{BaseEvent: NewBaseEvent(EventDownloadReverted, EntityItem, 1), ItemID: 1}
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	_, err := j.Append(old)
	require.NoError(t, err)
	_, err = j.Append(&DownloadReverted{BaseEvent: NewBaseEvent(EventDownloadReverted, EntityItem, 1), ItemID: 1})
	require.NoError(t, err)

	n, err := j.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := j.ForItem(1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestJournal_SnapshotPayloadDecodes(t *testing.T) {
	j := NewJournal(setupTestDB(t))
	items := []item.ListItem{item.Downloadable{ID: 222, Status: item.StatusDownloading}, item.Empty{ID: 0}}
	_, err := j.Append(NewSnapshotChanged(7, "update_download_status", true, items))
	require.NoError(t, err)

	rows, err := j.Recent("", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	e, err := DefaultRegistry().Unmarshal(rows[0])
	require.NoError(t, err)
	sc, ok := e.(*SnapshotChanged)
	require.True(t, ok)
	assert.Equal(t, uint64(7), sc.Version)
	assert.Equal(t, item.List(items), sc.Items)
}
