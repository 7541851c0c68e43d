// Package reconcile compares two list snapshots and describes the edits a
// renderer needs to turn the old rows into the new ones without touching
// rows that did not change.
package reconcile

import "github.com/vmunix/rowsync/internal/item"

// SameIdentity reports whether a and b are the same logical row: the same
// variant with the same id.
func SameIdentity(a, b item.ListItem) bool {
	switch x := a.(type) {
	case item.Downloadable:
		y, ok := b.(item.Downloadable)
		return ok && x.ID == y.ID
	case item.Empty:
		y, ok := b.(item.Empty)
		return ok && x.ID == y.ID
	default:
		return false
	}
}

// SameContent reports whether a and b are fully equal. It is only
// meaningful for rows that already share an identity.
func SameContent(a, b item.ListItem) bool {
	switch x := a.(type) {
	case item.Downloadable:
		y, ok := b.(item.Downloadable)
		return ok && x == y
	case item.Empty:
		y, ok := b.(item.Empty)
		return ok && x == y
	default:
		return false
	}
}
