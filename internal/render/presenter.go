// Package render is the presentation side of the list: it keeps the rows
// that are on screen and patches them with the minimal edit script each time
// a new snapshot arrives.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/reconcile"
)

// summarizeOver is the edit count above which a redraw prints one summary line.
const summarizeOver = 10

// Row is one rendered line.
type Row struct {
	Item  item.ListItem
	Label string
}

func newRow(it item.ListItem) Row {
	return Row{Item: it, Label: Label(it)}
}

// Stats counts the work the presenter has done.
type Stats struct {
	Snapshots int `json:"snapshots"` // notifications handled
	Skipped   int `json:"skipped"`   // notifications that needed no redraw
	Stale     int `json:"stale"`     // notifications older than what is on screen
	Inserted  int `json:"inserted"`
	Removed   int `json:"removed"`
	Moved     int `json:"moved"`
	Changed   int `json:"changed"`
}

// Presenter applies snapshot notifications to its row model and writes each
// edit to out.
type Presenter struct {
	mu        sync.Mutex
	out       io.Writer
	logger    *slog.Logger
	snapshots <-chan events.Event

	version  uint64
	rendered []item.ListItem
	rows     []Row
	stats    Stats
}

// NewPresenter creates a presenter subscribed to snapshot notifications.
func NewPresenter(bus *events.Bus, out io.Writer, bufferSize int, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Presenter{
		out:       out,
		logger:    logger,
		snapshots: bus.Subscribe(events.EventSnapshotChanged, bufferSize),
	}
}

// Name returns the component name.
func (p *Presenter) Name() string {
	return "presenter"
}

// Start handles notifications until ctx is done or the bus closes.
func (p *Presenter) Start(ctx context.Context) error {
	for {
		select {
		case e, ok := <-p.snapshots:
			if !ok {
				return nil
			}
			if sc, ok := e.(*events.SnapshotChanged); ok {
				p.Handle(sc)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Handle diffs the on-screen rows against the snapshot and applies the edits.
func (p *Presenter) Handle(e *events.SnapshotChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Version <= p.version {
		p.stats.Stale++
		p.logger.Debug("stale snapshot ignored", "version", e.Version, "on_screen", p.version)
		return
	}
	p.stats.Snapshots++

	diff := reconcile.Diff(p.rendered, e.Items)
	p.version = e.Version
	p.rendered = e.Items

	if diff.Empty() {
		p.stats.Skipped++
		return
	}

	ops := diff.Ops()
	firstPaint := len(p.rows) == 0
	p.rows = reconcile.Patch(p.rows, ops, newRow)

	p.stats.Inserted += len(diff.Inserted)
	p.stats.Removed += len(diff.Removed)
	p.stats.Moved += len(diff.Moved)
	p.stats.Changed += len(diff.Changed)

	p.logger.Debug("snapshot rendered",
		"version", e.Version,
		"action", e.Action,
		"inserted", len(diff.Inserted),
		"removed", len(diff.Removed),
		"moved", len(diff.Moved),
		"changed", len(diff.Changed))

	// the first paint and bulk edits are summarized rather than listed row by row
	if firstPaint || len(ops) > summarizeOver {
		fmt.Fprintf(p.out, "v%d %s: %d inserted, %d removed, %d moved, %d changed\n",
			e.Version, e.Action, len(diff.Inserted), len(diff.Removed), len(diff.Moved), len(diff.Changed))
		return
	}
	for _, op := range ops {
		fmt.Fprintf(p.out, "v%d %s\n", e.Version, describe(op))
	}
}

func describe(op reconcile.Op) string {
	switch op.Kind {
	case reconcile.OpRemove:
		return fmt.Sprintf("remove  @%-3d", op.Index)
	case reconcile.OpMove:
		return fmt.Sprintf("move    @%-3d <- @%d  %s", op.Index, op.From, Label(op.Item))
	default:
		return fmt.Sprintf("%-7s @%-3d %s", op.Kind, op.Index, Label(op.Item))
	}
}

// Rows returns a copy of the rows on screen.
func (p *Presenter) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Row(nil), p.rows...)
}

// Version returns the version of the snapshot on screen.
func (p *Presenter) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// Stats returns the work counters.
func (p *Presenter) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// WriteList prints every row with its index.
func WriteList(w io.Writer, items []item.ListItem) {
	for i, it := range items {
		fmt.Fprintf(w, "%3d  %s\n", i, Label(it))
	}
}
