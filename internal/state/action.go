package state

import (
	"fmt"

	"github.com/vmunix/rowsync/internal/item"
)

// Action names, as they appear in logs and snapshot events.
const (
	ActionAddItems             = "add_items"
	ActionUpdateDownloadStatus = "update_download_status"
)

// Action is a named mutation of the list. AddItems and UpdateDownloadStatus
// are the only implementations.
type Action interface {
	Name() string
	isAction()
}

// AddItems appends Items to the end of the list in their given order.
// Duplicate ids are accepted as-is.
type AddItems struct {
	Items []item.ListItem
}

func (AddItems) Name() string { return ActionAddItems }
func (AddItems) isAction()    {}

// UpdateDownloadStatus sets the status of the last downloadable row with
// ItemID. Unknown ids are ignored.
type UpdateDownloadStatus struct {
	ItemID int64
	Status item.DownloadStatus
}

func (UpdateDownloadStatus) Name() string { return ActionUpdateDownloadStatus }
func (UpdateDownloadStatus) isAction()    {}

func (a UpdateDownloadStatus) String() string {
	return fmt.Sprintf("update_download_status(%d, %s)", a.ItemID, a.Status)
}
