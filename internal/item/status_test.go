package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from DownloadStatus
		to   DownloadStatus
		want bool
	}{
		{StatusToDownload, StatusDownloading, true},
		{StatusDownloading, StatusToDownload, true},
		{StatusToDownload, StatusToDownload, false},
		{StatusDownloading, StatusDownloading, false},
		{DownloadStatus("bogus"), StatusDownloading, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("downloading")
	require.NoError(t, err)
	assert.Equal(t, StatusDownloading, s)

	_, err = ParseStatus("DOWNLOADING")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
