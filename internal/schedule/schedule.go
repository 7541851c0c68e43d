// Package schedule runs delayed callbacks keyed by item id. Callbacks run on
// their own goroutine after the delay; nothing ever sleeps on the caller.
package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// Task is a pending callback.
type Task struct {
	key   int64
	due   time.Time
	timer *time.Timer
	s     *Scheduler
}

// Key returns the id the task was scheduled under.
func (t *Task) Key() int64 { return t.key }

// Due returns when the task is set to fire.
func (t *Task) Due() time.Time { return t.due }

// Cancel stops the task. It returns true if the callback will not run
// because of this call.
func (t *Task) Cancel() bool {
	return t.s.cancel(t)
}

// Scheduler holds at most one pending task per key.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[int64]*Task
	closed bool
	logger *slog.Logger
}

// New creates a scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tasks:  make(map[int64]*Task),
		logger: logger,
	}
}

// Schedule runs fn after delay. A pending task under the same key is
// cancelled and replaced. On a closed scheduler the returned task is
// already cancelled.
func (s *Scheduler) Schedule(key int64, delay time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Task{key: key, due: time.Now().Add(delay), s: s}
	if s.closed {
		return t
	}

	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
		s.logger.Debug("replacing pending task", "key", key)
	}
	s.tasks[key] = t
	t.timer = time.AfterFunc(delay, func() {
		if !s.claim(t) {
			return
		}
		fn()
	})
	return t
}

// claim removes t from the pending set if it is still the current task
// for its key. Only the claimant may run the callback.
func (s *Scheduler) claim(t *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[t.key] != t {
		return false
	}
	delete(s.tasks, t.key)
	return true
}

func (s *Scheduler) cancel(t *Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.timer == nil || s.tasks[t.key] != t {
		return false
	}
	delete(s.tasks, t.key)
	t.timer.Stop()
	return true
}

// Cancel stops the pending task for key, if any.
func (s *Scheduler) Cancel(key int64) bool {
	s.mu.Lock()
	t, ok := s.tasks[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.cancel(t)
}

// Pending returns the number of tasks that have not fired or been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CancelAll stops every pending task and returns how many were stopped.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tasks)
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	return n
}

// Close cancels everything and rejects new tasks.
func (s *Scheduler) Close() error {
	n := s.CancelAll()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if n > 0 {
		s.logger.Info("cancelled pending tasks", "count", n)
	}
	return nil
}
