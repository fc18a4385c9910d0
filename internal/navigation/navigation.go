// Package navigation moves the user between screens, either right away or after a delay that can be cancelled.
package navigation

import (
	"context"
	"sync"
	"time"
)

// Navigator sends the user to another screen.
type Navigator interface {
	// Navigate leaves the current screen for path. It preempts anything the current screen still renders.
	Navigate(ctx context.Context, path string)
	// NavigateAfter schedules a navigation to path once delay has passed.
	NavigateAfter(ctx context.Context, delay time.Duration, path string) *Scheduled
}

// Scheduled is a pending navigation that has not happened yet.
type Scheduled struct {
	Path  string
	Delay time.Duration

	mu        sync.Mutex
	cancelled bool
	fired     bool
	stop      func() bool
}

func newScheduled(delay time.Duration, path string) *Scheduled {
	return &Scheduled{Path: path, Delay: delay} //nolint:exhaustruct // zero state is pending
}

// Cancel stops the navigation. It reports whether the navigation was still pending.
func (s *Scheduled) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || s.cancelled {
		return false
	}
	s.cancelled = true
	if s.stop != nil {
		s.stop()
	}
	return true
}

// Fired reports whether the navigation has been carried out.
func (s *Scheduled) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Cancelled reports whether Cancel stopped the navigation.
func (s *Scheduled) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// fire marks the navigation as carried out unless it was cancelled first.
func (s *Scheduled) fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.fired {
		return false
	}
	s.fired = true
	return true
}

// Timer navigates by calling OnNavigate, with delays run on [time.AfterFunc].
type Timer struct {
	OnNavigate func(path string)
}

func (t Timer) Navigate(_ context.Context, path string) {
	t.OnNavigate(path)
}

func (t Timer) NavigateAfter(_ context.Context, delay time.Duration, path string) *Scheduled {
	s := newScheduled(delay, path)
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := time.AfterFunc(delay, func() {
		if s.fire() {
			t.OnNavigate(path)
		}
	})
	s.stop = timer.Stop
	return s
}
