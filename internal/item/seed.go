package item

// Default seed population: four downloadable rows followed by 31 placeholders.
var (
	DefaultDownloadableIDs = []int64{222, 223, 224, 225}
	DefaultEmptyCount      = 31
)

// Seed builds the initial list: one ToDownload row per downloadable id, then
// emptyCount placeholder rows with ids 0..emptyCount-1.
func Seed(downloadableIDs []int64, emptyCount int) []ListItem {
	if emptyCount < 0 {
		emptyCount = 0
	}
	items := make([]ListItem, 0, len(downloadableIDs)+emptyCount)
	for _, id := range downloadableIDs {
		items = append(items, Downloadable{ID: id, Status: StatusToDownload})
	}
	for i := 0; i < emptyCount; i++ {
		items = append(items, Empty{ID: int64(i)})
	}
	return items
}

// DefaultSeed returns the standard 35-item seed list.
func DefaultSeed() []ListItem {
	return Seed(DefaultDownloadableIDs, DefaultEmptyCount)
}
