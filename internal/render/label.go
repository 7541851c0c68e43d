package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vmunix/rowsync/internal/item"
)

var titleCaser = cases.Title(language.English)

// StatusLabel returns the human form of a status, e.g. "To Download".
func StatusLabel(s item.DownloadStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

// Label renders one row the way the list shows it.
func Label(it item.ListItem) string {
	switch v := it.(type) {
	case item.Downloadable:
		button := "[download]"
		if v.Status == item.StatusDownloading {
			button = "[ ... ]"
		}
		return fmt.Sprintf("#%d %-12s %s", v.ID, StatusLabel(v.Status), button)
	case item.Empty:
		return fmt.Sprintf("empty %d", v.ID)
	default:
		return fmt.Sprintf("%v", it)
	}
}
