package item

import "errors"

// Sentinel errors for the item package.
var (
	// ErrUnknownKind is returned when decoding an item with an unrecognized kind tag.
	ErrUnknownKind = errors.New("unknown item kind")

	// ErrUnknownStatus is returned when decoding an unrecognized download status.
	ErrUnknownStatus = errors.New("unknown download status")
)
