package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/rowsync/internal/events"
)

var _ Handler = (*DownloadHandler)(nil)

func TestBaseHandler_Fields(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer bus.Close()

	base := NewBaseHandler(bus, nil)
	assert.Same(t, bus, base.Bus())
	assert.NotNil(t, base.Logger())
}

func TestDownloadHandler_StopsOnCancel(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer bus.Close()

	h := NewDownloadHandler(bus, &fakeStarter{}, 10, nil)
	assert.Equal(t, "download", h.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
