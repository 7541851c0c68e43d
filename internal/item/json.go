package item

import (
	"encoding/json"
	"fmt"
)

// wireItem is the JSON form shared by both variants.
type wireItem struct {
	Kind   Kind           `json:"kind"`
	ID     int64          `json:"id"`
	Status DownloadStatus `json:"status,omitempty"`
}

func (d Downloadable) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireItem{Kind: KindDownloadable, ID: d.ID, Status: d.Status})
}

func (e Empty) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireItem{Kind: KindEmpty, ID: e.ID})
}

// List is an ordered sequence of items that knows how to decode its
// variants from JSON.
type List []ListItem

// UnmarshalJSON decodes a JSON array of tagged items.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []wireItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(List, 0, len(raw))
	for i, w := range raw {
		it, err := w.decode()
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, it)
	}
	*l = out
	return nil
}

func (w wireItem) decode() (ListItem, error) {
	switch w.Kind {
	case KindDownloadable:
		status := w.Status
		if status == "" {
			status = StatusToDownload
		}
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, w.Status)
		}
		return Downloadable{ID: w.ID, Status: status}, nil
	case KindEmpty:
		return Empty{ID: w.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
}

// DecodeList parses a JSON array of items.
func DecodeList(data []byte) ([]ListItem, error) {
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return []ListItem(l), nil
}
