// Package item defines the rows of the list: a closed set of item variants
// and the download status carried by downloadable rows.
package item

import "fmt"

// Kind tags a ListItem variant.
type Kind string

const (
	KindDownloadable Kind = "downloadable"
	KindEmpty        Kind = "empty"
)

// ListItem is one row of the list. The set of variants is closed:
// Downloadable and Empty are the only implementations.
type ListItem interface {
	Kind() Kind
	ItemID() int64
	isListItem()
}

// Downloadable is a row with a download action.
type Downloadable struct {
	ID     int64
	Status DownloadStatus
}

func (Downloadable) Kind() Kind      { return KindDownloadable }
func (d Downloadable) ItemID() int64 { return d.ID }
func (Downloadable) isListItem()     {}

// WithStatus returns a copy of d carrying status.
func (d Downloadable) WithStatus(status DownloadStatus) Downloadable {
	d.Status = status
	return d
}

func (d Downloadable) String() string {
	return fmt.Sprintf("downloadable(%d, %s)", d.ID, d.Status)
}

// Empty is an inert placeholder row.
type Empty struct {
	ID int64
}

func (Empty) Kind() Kind      { return KindEmpty }
func (e Empty) ItemID() int64 { return e.ID }
func (Empty) isListItem()     {}

func (e Empty) String() string {
	return fmt.Sprintf("empty(%d)", e.ID)
}

// Key identifies a row across snapshots: the variant plus its id.
// Two items with the same id but different variants have different keys.
type Key struct {
	Kind Kind
	ID   int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// KeyOf returns the identity key of it.
func KeyOf(it ListItem) Key {
	switch v := it.(type) {
	case Downloadable:
		return Key{Kind: KindDownloadable, ID: v.ID}
	case Empty:
		return Key{Kind: KindEmpty, ID: v.ID}
	default:
		panic(fmt.Sprintf("item: unknown list item %T", it))
	}
}
