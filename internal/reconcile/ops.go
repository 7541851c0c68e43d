package reconcile

import (
	"fmt"
	"sort"

	"github.com/vmunix/rowsync/internal/item"
)

// OpKind names one step of an edit script.
type OpKind string

const (
	OpRemove OpKind = "remove"
	OpInsert OpKind = "insert"
	OpMove   OpKind = "move"
	OpChange OpKind = "change"
)

// Op is one step of an edit script. Index is a position in the list as it
// stands when the step is applied; From is the source position of a move.
// Item is set for inserts, moves and changes.
type Op struct {
	Kind  OpKind        `json:"kind"`
	Index int           `json:"index"`
	From  int           `json:"from"`
	Item  item.ListItem `json:"item,omitempty"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpRemove:
		return fmt.Sprintf("remove @%d", o.Index)
	case OpMove:
		return fmt.Sprintf("move @%d -> @%d %v", o.From, o.Index, o.Item)
	default:
		return fmt.Sprintf("%s @%d %v", o.Kind, o.Index, o.Item)
	}
}

// Ops returns a script that turns the old list into the new one when its
// steps are applied in order: removals from the highest index down, then
// moves and insertions in ascending target position, then content changes
// at their final positions.
func (r Result) Ops() []Op {
	var ops []Op

	removed := append([]int(nil), r.Removed...)
	sort.Sort(sort.Reverse(sort.IntSlice(removed)))

	// working holds old indices, or -1 for inserted rows
	working := make([]int, 0, len(r.old))
	isRemoved := make(map[int]bool, len(removed))
	for _, i := range removed {
		isRemoved[i] = true
		ops = append(ops, Op{Kind: OpRemove, Index: i})
	}
	for i := range r.old {
		if !isRemoved[i] {
			working = append(working, i)
		}
	}

	source := make(map[int]int, len(r.matched)+len(r.Moved)) // new index -> old index
	for _, p := range r.matched {
		source[p.New] = p.Old
	}
	for _, p := range r.Moved {
		source[p.New] = p.Old
	}

	for j := range r.new {
		o, ok := source[j]
		if !ok {
			working = insertAt(working, j, -1)
			ops = append(ops, Op{Kind: OpInsert, Index: j, Item: r.new[j]})
			continue
		}
		p := indexOf(working, o, j)
		if p == j {
			continue
		}
		working = insertAt(removeAt(working, p), j, o)
		ops = append(ops, Op{Kind: OpMove, Index: j, From: p, Item: r.old[o]})
	}

	changed := append([]Pair(nil), r.Changed...)
	sort.Slice(changed, func(a, b int) bool { return changed[a].New < changed[b].New })
	for _, p := range changed {
		ops = append(ops, Op{Kind: OpChange, Index: p.New, Item: r.new[p.New]})
	}
	return ops
}

// Patch applies ops to rows. build converts an item into the row type for
// inserts and changes; moves carry the existing row along.
func Patch[T any](rows []T, ops []Op, build func(item.ListItem) T) []T {
	out := make([]T, 0, len(rows)+len(ops))
	out = append(out, rows...)
	for _, op := range ops {
		switch op.Kind {
		case OpRemove:
			out = removeAt(out, op.Index)
		case OpInsert:
			out = insertAt(out, op.Index, build(op.Item))
		case OpMove:
			row := out[op.From]
			out = insertAt(removeAt(out, op.From), op.Index, row)
		case OpChange:
			out[op.Index] = build(op.Item)
		}
	}
	return out
}

func indexOf(s []int, v, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == v {
			return i
		}
	}
	return -1
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
