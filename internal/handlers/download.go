package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/rowsync/internal/download"
	"github.com/vmunix/rowsync/internal/events"
)

// Starter begins a simulated download. *download.Simulator satisfies it.
type Starter interface {
	Start(ctx context.Context, itemID int64) error
}

// DownloadHandler turns download requests into simulator runs.
type DownloadHandler struct {
	*BaseHandler
	sim      Starter
	requests <-chan events.Event
}

// NewDownloadHandler creates a download handler. It subscribes right away
// so requests published before Start are not lost.
func NewDownloadHandler(bus *events.Bus, sim Starter, bufferSize int, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		BaseHandler: NewBaseHandler(bus, logger),
		sim:         sim,
		requests:    bus.Subscribe(events.EventDownloadRequested, bufferSize),
	}
}

// Name returns the handler name.
func (h *DownloadHandler) Name() string {
	return "download"
}

// Start processes requests until ctx is done or the bus closes.
func (h *DownloadHandler) Start(ctx context.Context) error {
	for {
		select {
		case e, ok := <-h.requests:
			if !ok {
				return nil
			}
			req, ok := e.(*events.DownloadRequested)
			if !ok {
				continue
			}
			h.handleRequested(ctx, req)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *DownloadHandler) handleRequested(ctx context.Context, e *events.DownloadRequested) {
	h.Logger().Debug("processing download request", "item_id", e.ItemID, "source", e.Source)

	err := h.sim.Start(ctx, e.ItemID)
	switch {
	case err == nil:
	case errors.Is(err, download.ErrItemNotFound), errors.Is(err, download.ErrAlreadyDownloading):
		h.Logger().Debug("download request skipped", "item_id", e.ItemID, "reason", err)
	default:
		h.Logger().Error("download request failed", "item_id", e.ItemID, "error", err)
	}
}
