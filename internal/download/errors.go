package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrItemNotFound is returned when no downloadable row has the requested id.
	ErrItemNotFound = errors.New("downloadable item not found")

	// ErrAlreadyDownloading is returned when the row is already mid-download.
	ErrAlreadyDownloading = errors.New("item already downloading")
)
