//go:generate mockgen -source=store.go -destination=mocks/mock_publisher.go -package=mocks Publisher

// Package state owns the authoritative list of rows. Every mutation goes
// through Store.Apply, which produces a new immutable Snapshot and
// announces it to subscribers.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
)

// Publisher delivers snapshot notifications. *events.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Store holds the current snapshot. Apply calls are serialized: reading the
// current snapshot, building its successor and publishing it happen as one
// step with respect to other Apply calls.
type Store struct {
	mu      sync.Mutex
	current Snapshot
	seeded  bool
	pub     Publisher // may be nil
	logger  *slog.Logger
}

// NewStore creates an empty store publishing through pub.
func NewStore(pub Publisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pub: pub, logger: logger}
}

// Current returns the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Seed installs the initial rows. It may be called once, before any Apply.
func (s *Store) Seed(ctx context.Context, items []item.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded || s.current.version > 0 {
		return ErrAlreadySeeded
	}
	s.seeded = true
	s.apply(ctx, AddItems{Items: items})
	return nil
}

// Apply performs one action and publishes exactly one SnapshotChanged event.
func (s *Store) Apply(ctx context.Context, a Action) error {
	if a == nil {
		return ErrUnknownAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.(type) {
	case AddItems, UpdateDownloadStatus:
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	s.apply(ctx, a)
	return nil
}

// apply must be called with s.mu held.
func (s *Store) apply(ctx context.Context, a Action) {
	var (
		next    []item.ListItem
		changed bool
	)
	switch act := a.(type) {
	case AddItems:
		next, changed = addItems(s.current.items, act), true
	case UpdateDownloadStatus:
		next, changed = updateDownloadStatus(s.current.items, act)
	}

	s.current = Snapshot{version: s.current.version + 1, items: next}

	s.logger.Debug("snapshot published",
		"action", a.Name(),
		"version", s.current.version,
		"items", len(next),
		"changed", changed)

	if s.pub == nil {
		return
	}
	e := events.NewSnapshotChanged(s.current.version, a.Name(), changed, s.current.Items())
	if err := s.pub.Publish(ctx, e); err != nil {
		// the new snapshot stays current; observers catch up on the next one
		s.logger.Error("failed to publish snapshot", "version", s.current.version, "error", err)
	}
}

func addItems(cur []item.ListItem, a AddItems) []item.ListItem {
	next := make([]item.ListItem, 0, len(cur)+len(a.Items))
	next = append(next, cur...)
	return append(next, a.Items...)
}

// updateDownloadStatus returns cur unchanged (and false) when no
// downloadable row has the id. cur is shared in that case, which is safe
// because snapshots are never written to.
func updateDownloadStatus(cur []item.ListItem, a UpdateDownloadStatus) ([]item.ListItem, bool) {
	d, i, ok := Snapshot{items: cur}.FindDownloadable(a.ItemID)
	if !ok {
		return cur, false
	}
	next := make([]item.ListItem, len(cur))
	copy(next, cur)
	next[i] = d.WithStatus(a.Status)
	return next, next[i] != cur[i]
}
