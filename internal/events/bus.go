package events

import (
	"context"
	"log/slog"
	"sync"
)

// Recorder persists events as they are published.
type Recorder interface {
	Append(e Event) (int64, error)
}

// Bus fans events out to subscriber channels.
// Delivery never blocks the publisher: a full subscriber drops the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event // eventType -> channels
	allSubs     []chan Event
	recorder    Recorder // may be nil
	logger      *slog.Logger
	closed      bool
}

// NewBus creates a new event bus. The recorder is optional.
func NewBus(recorder Recorder, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Event),
		recorder:    recorder,
		logger:      logger,
	}
}

// Publish records e and delivers it to every matching subscriber.
// Publishing on a closed or nil bus is a no-op.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	if b.recorder != nil {
		if _, err := b.recorder.Append(e); err != nil {
			// delivery still goes ahead
			b.logger.Error("failed to record event", "type", e.EventType(), "error", err)
		}
	}

	for _, ch := range b.subscribers[e.EventType()] {
		b.deliver(ch, e)
	}
	for _, ch := range b.allSubs {
		b.deliver(ch, e)
	}
	return nil
}

func (b *Bus) deliver(ch chan Event, e Event) {
	select {
	case ch <- e:
	default:
		b.logger.Warn("subscriber channel full, dropping event",
			"type", e.EventType(),
			"entity_type", e.EntityType(),
			"entity_id", e.EntityID())
	}
}

// Subscribe returns a channel for events of a specific type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel that receives every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = nil

	for _, ch := range b.allSubs {
		close(ch)
	}
	b.allSubs = nil

	return nil
}
