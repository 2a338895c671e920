// Package debounce provides a single-slot cancellable delayed-execution
// primitive. A scheduler owns at most one pending timer: scheduling a new
// action replaces the previous one outright, so at most one action fires
// per quiet period. It backs debounced search input, where only the final
// keystroke in a burst should trigger a reload.
package debounce

import (
	"sync"
	"time"
)

// Scheduler is a single-slot timer owned by exactly one controller.
// It must be released with Release when the owner's lifetime ends;
// a released scheduler never fires and ignores further Schedule calls.
type Scheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
	released bool
}

// NewScheduler creates an empty scheduler with no pending action.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule arranges for fn to run after delay, replacing any previously
// scheduled action. The replaced action is cancelled outright and never
// fires. fn runs on a timer goroutine; callers that mutate shared state
// from fn must do their own locking.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}

	s.stopPendingLocked()

	// The sequence number guards against a timer that was already firing
	// while we held the lock: a stale callback sees a newer seq and bails.
	s.seq++
	seq := s.seq

	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.released || s.seq != seq {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		fn()
	})
}

// Cancel clears any pending action without releasing the scheduler.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPendingLocked()
	s.seq++
}

// Release cancels any pending action and permanently disables the
// scheduler. Safe to call more than once.
func (s *Scheduler) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPendingLocked()
	s.seq++
	s.released = true
}

// Pending reports whether an action is currently scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
