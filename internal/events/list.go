package events

import (
	"time"

	"github.com/vmunix/rowsync/internal/item"
)

// Entity types
const (
	EntityList = "list" // entity id is the snapshot version
	EntityItem = "item" // entity id is the downloadable item id
)

// Event type constants
const (
	EventSnapshotChanged   = "snapshot.changed"
	EventDownloadRequested = "download.requested"
	EventDownloadStarted   = "download.started"
	EventDownloadReverted  = "download.reverted"
	EventDownloadIgnored   = "download.ignored"
)

// SnapshotChanged is emitted once per applied action with the resulting list.
type SnapshotChanged struct {
	BaseEvent
	Version uint64    `json:"version"`
	Action  string    `json:"action"`
	Changed bool      `json:"changed"` // false when the action left the rows as they were
	Items   item.List `json:"items"`
}

// NewSnapshotChanged builds a SnapshotChanged event for version.
func NewSnapshotChanged(version uint64, action string, changed bool, items []item.ListItem) *SnapshotChanged {
	return &SnapshotChanged{
		BaseEvent: NewBaseEvent(EventSnapshotChanged, EntityList, int64(version)),
		Version:   version,
		Action:    action,
		Changed:   changed,
		Items:     items,
	}
}

// DownloadRequested is emitted when the user taps a row's download button.
type DownloadRequested struct {
	BaseEvent
	ItemID int64  `json:"item_id"`
	Source string `json:"source"` // "demo", "cli"
}

// DownloadStarted is emitted after a row has been switched to downloading.
type DownloadStarted struct {
	BaseEvent
	ItemID        int64     `json:"item_id"`
	RevertAfterMS int64     `json:"revert_after_ms"`
	RevertAt      time.Time `json:"revert_at"`
}

// DownloadReverted is emitted when the simulated download ends and the row
// goes back to to_download.
type DownloadReverted struct {
	BaseEvent
	ItemID int64 `json:"item_id"`
}

// DownloadIgnored is emitted when a request cannot start a download.
type DownloadIgnored struct {
	BaseEvent
	ItemID int64  `json:"item_id"`
	Reason string `json:"reason"` // "not_found", "already_downloading"
}
