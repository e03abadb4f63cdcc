package reactive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// Scheduler defers batched evaluations to the next cooperative tick. Roots
// opt into one with WithScheduler; without it a root ends a tick after
// each outermost mutation or Batch.
//
// A tick is one call to Flush. Callers that drive state from their own loop
// call Flush after each unit of work. Alternatively Run turns the scheduler
// into that loop: it executes posted tasks one at a time and flushes after
// each, and also on a fixed interval when one is configured.
type Scheduler struct {
	// deferred holds func() values waiting for the next flush.
	deferred *queue.Queue
	mu       sync.Mutex

	tasks        chan func()
	done         chan struct{}
	closeOnce    sync.Once
	running      atomic.Bool
	tickInterval time.Duration
	logger       *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTickInterval makes Run flush on a fixed interval in addition to
// after every posted task. Zero disables the timer.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.tickInterval = d
	}
}

// WithTaskBuffer sets the capacity of the posted-task channel.
func WithTaskBuffer(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n >= 0 {
			s.tasks = make(chan func(), n)
		}
	}
}

// WithSchedulerLogger sets the scheduler's logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler with an empty queue.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		deferred: queue.New(),
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defer queues fn for the next flush.
func (s *Scheduler) Defer(fn func()) {
	s.mu.Lock()
	s.deferred.Add(fn)
	s.mu.Unlock()
}

// Pending returns the number of deferred tasks waiting for a flush.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deferred.Length()
}

// Flush runs deferred tasks until the queue is empty, including tasks
// deferred by the tasks it runs. It returns how many ran. A panicking task
// propagates to the caller; tasks still queued stay queued.
func (s *Scheduler) Flush() int {
	n := 0
	for {
		s.mu.Lock()
		if s.deferred.Length() == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.deferred.Remove().(func())
		s.mu.Unlock()

		fn()
		n++
	}
}

// Post hands fn to the Run loop. It blocks while the task buffer is full
// and fails once ctx is done or the scheduler is closed.
func (s *Scheduler) Post(ctx context.Context, fn func()) error {
	select {
	case <-s.done:
		return ErrSchedulerStopped
	default:
	}
	select {
	case s.tasks <- fn:
		return nil
	case <-s.done:
		return ErrSchedulerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted tasks on the calling goroutine until ctx is done or
// Close is called. Each task is one tick: deferred work is flushed after it.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSchedulerRunning
	}
	defer s.running.Store(false)

	var tick <-chan time.Time
	if s.tickInterval > 0 {
		t := time.NewTicker(s.tickInterval)
		defer t.Stop()
		tick = t.C
	}

	s.logger.Debug("scheduler loop started", "tick_interval", s.tickInterval)
	defer s.logger.Debug("scheduler loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			s.Flush()
			return nil
		case fn := <-s.tasks:
			fn()
			s.Flush()
		case <-tick:
			s.Flush()
		}
	}
}

// Close stops the Run loop and rejects further posts. Deferred work still
// queued is flushed by the loop before it returns.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
