//go:generate mockgen -source=simulator.go -destination=mocks/mock_store.go -package=mocks Store

// Package download simulates the download action of a row: the row switches
// to downloading and a deferred task switches it back after a fixed delay.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/schedule"
	"github.com/vmunix/rowsync/internal/state"
)

// DefaultDelay is how long a simulated download lasts.
const DefaultDelay = 5 * time.Second

// Store is the part of state.Store the simulator drives.
type Store interface {
	Apply(ctx context.Context, a state.Action) error
	Current() state.Snapshot
}

// Simulator starts fake downloads and schedules their revert.
type Simulator struct {
	mu     sync.Mutex // one Start at a time
	store  Store
	bus    *events.Bus
	sched  *schedule.Scheduler
	delay  time.Duration
	logger *slog.Logger
}

// NewSimulator creates a simulator. A non-positive delay uses DefaultDelay.
// bus may be nil.
func NewSimulator(store Store, bus *events.Bus, sched *schedule.Scheduler, delay time.Duration, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Simulator{
		store:  store,
		bus:    bus,
		sched:  sched,
		delay:  delay,
		logger: logger,
	}
}

// Delay returns the simulated download duration.
func (s *Simulator) Delay() time.Duration {
	return s.delay
}

// Start switches the row to downloading and schedules the revert.
// It returns ErrItemNotFound when no downloadable row has the id and
// ErrAlreadyDownloading when the row is mid-download.
func (s *Simulator) Start(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, _, ok := s.store.Current().FindDownloadable(itemID)
	if !ok {
		s.ignored(ctx, itemID, "not_found")
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if !d.Status.CanTransitionTo(item.StatusDownloading) {
		s.ignored(ctx, itemID, "already_downloading")
		return fmt.Errorf("%w: %d", ErrAlreadyDownloading, itemID)
	}

	if err := s.store.Apply(ctx, state.UpdateDownloadStatus{ItemID: itemID, Status: item.StatusDownloading}); err != nil {
		return fmt.Errorf("start download: %w", err)
	}

	// the revert must run even if the caller's context ends first
	revertCtx := context.WithoutCancel(ctx)
	task := s.sched.Schedule(itemID, s.delay, func() { s.revert(revertCtx, itemID) })

	s.logger.Info("download started", "item_id", itemID, "revert_at", task.Due())
	s.publish(ctx, &events.DownloadStarted{
		BaseEvent:     events.NewBaseEvent(events.EventDownloadStarted, events.EntityItem, itemID),
		ItemID:        itemID,
		RevertAfterMS: s.delay.Milliseconds(),
		RevertAt:      task.Due(),
	})
	return nil
}

// Cancel drops the pending revert for itemID. The row stays downloading.
func (s *Simulator) Cancel(itemID int64) bool {
	return s.sched.Cancel(itemID)
}

func (s *Simulator) revert(ctx context.Context, itemID int64) {
	if err := s.store.Apply(ctx, state.UpdateDownloadStatus{ItemID: itemID, Status: item.StatusToDownload}); err != nil {
		s.logger.Error("revert failed", "item_id", itemID, "error", err)
		return
	}
	s.logger.Info("download reverted", "item_id", itemID)
	s.publish(ctx, &events.DownloadReverted{
		BaseEvent: events.NewBaseEvent(events.EventDownloadReverted, events.EntityItem, itemID),
		ItemID:    itemID,
	})
}

func (s *Simulator) ignored(ctx context.Context, itemID int64, reason string) {
	s.logger.Debug("download request ignored", "item_id", itemID, "reason", reason)
	s.publish(ctx, &events.DownloadIgnored{
		BaseEvent: events.NewBaseEvent(events.EventDownloadIgnored, events.EntityItem, itemID),
		ItemID:    itemID,
		Reason:    reason,
	})
}

func (s *Simulator) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "type", e.EventType(), "error", err)
	}
}
