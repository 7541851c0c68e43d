package item

import "fmt"

// DownloadStatus tracks the state of a downloadable row.
type DownloadStatus string

const (
	StatusToDownload  DownloadStatus = "to_download"
	StatusDownloading DownloadStatus = "downloading"
)

// validTransitions defines the moves the download simulator makes.
// Key is the "from" status, value is the list of valid "to" statuses.
var validTransitions = map[DownloadStatus][]DownloadStatus{
	StatusToDownload:  {StatusDownloading},
	StatusDownloading: {StatusToDownload},
}

// CanTransitionTo returns true if moving from s to target is a valid step.
func (s DownloadStatus) CanTransitionTo(target DownloadStatus) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s DownloadStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s DownloadStatus) String() string {
	return string(s)
}

// ParseStatus converts the textual form of a status.
func ParseStatus(s string) (DownloadStatus, error) {
	status := DownloadStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}
