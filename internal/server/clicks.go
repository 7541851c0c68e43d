package server

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/juju/ratelimit"

	"github.com/vmunix/rowsync/internal/events"
	"github.com/vmunix/rowsync/internal/item"
	"github.com/vmunix/rowsync/internal/state"
)

// SnapshotSource is the current-snapshot view the click source reads from.
type SnapshotSource interface {
	Current() state.Snapshot
}

// ClickSource simulates a user tapping download buttons. Each click picks a
// random row that is ready to download and publishes a DownloadRequested.
type ClickSource struct {
	bus    *events.Bus
	store  SnapshotSource
	bucket *ratelimit.Bucket
	rng    *rand.Rand
	logger *slog.Logger
}

// NewClickSource creates a click source limited to rate clicks per second.
// A non-positive rate disables throttling. rng may be nil.
func NewClickSource(bus *events.Bus, store SnapshotSource, rate float64, rng *rand.Rand, logger *slog.Logger) *ClickSource {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	var bucket *ratelimit.Bucket
	if rate > 0 {
		bucket = ratelimit.NewBucketWithRate(rate, 1)
	}
	return &ClickSource{
		bus:    bus,
		store:  store,
		bucket: bucket,
		rng:    rng,
		logger: logger,
	}
}

// Run clicks up to n times and returns how many requests were published.
// A click with no ready row publishes nothing.
func (c *ClickSource) Run(ctx context.Context, n int) (int, error) {
	published := 0
	for i := 0; i < n; i++ {
		if err := c.wait(ctx); err != nil {
			return published, err
		}
		if _, ok := c.Click(ctx); ok {
			published++
		}
	}
	return published, nil
}

func (c *ClickSource) wait(ctx context.Context) error {
	if c.bucket == nil {
		return ctx.Err()
	}
	d := c.bucket.Take(1)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Click publishes a request for one random ready row. It reports false when
// every row is busy or the list has no downloadable rows.
func (c *ClickSource) Click(ctx context.Context) (int64, bool) {
	ready := readyIDs(c.store.Current())
	if len(ready) == 0 {
		c.logger.Debug("click skipped, nothing ready")
		return 0, false
	}
	id := ready[c.rng.IntN(len(ready))]

	c.logger.Debug("click", "item_id", id)
	err := c.bus.Publish(ctx, &events.DownloadRequested{
		BaseEvent: events.NewBaseEvent(events.EventDownloadRequested, events.EntityItem, id),
		ItemID:    id,
		Source:    "demo",
	})
	if err != nil {
		c.logger.Error("failed to publish click", "item_id", id, "error", err)
		return 0, false
	}
	return id, true
}

func readyIDs(snap state.Snapshot) []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, it := range snap.Items() {
		d, ok := it.(item.Downloadable)
		if !ok || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		// a repeated id is ready only if its last row is, since that is the row an update hits
		if last, _, _ := snap.FindDownloadable(d.ID); last.Status == item.StatusToDownload {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
