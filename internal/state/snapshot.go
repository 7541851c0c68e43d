package state

import (
	"encoding/json"

	"github.com/vmunix/rowsync/internal/item"
)

// Snapshot is an immutable, ordered view of the list at one point in time.
// The zero value is the empty snapshot at version 0.
type Snapshot struct {
	version uint64
	items   []item.ListItem // never written after construction
}

// Version increases by one with every published snapshot.
func (s Snapshot) Version() uint64 { return s.version }

// Len returns the number of rows.
func (s Snapshot) Len() int { return len(s.items) }

// At returns the row at index i.
func (s Snapshot) At(i int) item.ListItem { return s.items[i] }

// Items returns a copy of the rows in render order.
func (s Snapshot) Items() []item.ListItem {
	out := make([]item.ListItem, len(s.items))
	copy(out, s.items)
	return out
}

// Equal reports whether s and o hold the same rows in the same order.
// Versions are ignored.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the snapshot as {"version":N,"items":[...]}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	items := s.items
	if items == nil {
		items = []item.ListItem{}
	}
	return json.Marshal(struct {
		Version uint64          `json:"version"`
		Items   []item.ListItem `json:"items"`
	}{s.version, items})
}

// NewSnapshot builds a snapshot holding a copy of items.
func NewSnapshot(version uint64, items []item.ListItem) Snapshot {
	return Snapshot{version: version, items: append([]item.ListItem(nil), items...)}
}

// FindDownloadable returns the last downloadable row with id.
func (s Snapshot) FindDownloadable(id int64) (item.Downloadable, int, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if d, ok := s.items[i].(item.Downloadable); ok && d.ID == id {
			return d, i, true
		}
	}
	return item.Downloadable{}, -1, false
}
