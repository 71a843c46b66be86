// Package clock provides a mockable time source and cancellable scheduled
// tasks. In production it wraps the time package. For tests, use MockClock.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is the interface for time operations.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// AfterFunc schedules f to run once after d. The returned Timer is the
	// only way to cancel it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a scheduled task.
type Timer interface {
	// Stop cancels the task. It returns false if the task already ran or
	// was already stopped.
	Stop() bool
}

// --- Real Clock ---

// RealClock provides the actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// --- Mock Clock ---

// MockClock is a test clock with controllable time. Scheduled tasks run
// synchronously from Advance or Set once their deadline is reached.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
	seq     int
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	seq      int
	fn       func()
	done     bool
}

// NewMockClock creates a mock clock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mock time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Since returns the duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// AfterFunc registers f to run when the mock time reaches now+d.
func (c *MockClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &mockTimer{clock: c, deadline: c.current.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop cancels the timer.
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.clock.removeLocked(t)
	return true
}

func (c *MockClock) removeLocked(t *mockTimer) {
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// Set sets the mock time and fires any timers that became due.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
	c.fireDue()
}

// Advance advances the mock time by d and fires any timers that became due.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
	c.fireDue()
}

// Pending returns the number of scheduled timers that have not fired or
// been stopped.
func (c *MockClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// NextDeadline returns the earliest pending deadline.
func (c *MockClock) NextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return time.Time{}, false
	}
	next := c.timers[0].deadline
	for _, t := range c.timers[1:] {
		if t.deadline.Before(next) {
			next = t.deadline
		}
	}
	return next, true
}

// fireDue runs due timers in deadline order. Callbacks run without the lock
// held so they may schedule new timers; those fire too if already due.
func (c *MockClock) fireDue() {
	for {
		c.mu.Lock()
		var due []*mockTimer
		for _, t := range c.timers {
			if !t.deadline.After(c.current) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].deadline.Equal(due[j].deadline) {
				return due[i].seq < due[j].seq
			}
			return due[i].deadline.Before(due[j].deadline)
		})
		next := due[0]
		next.done = true
		c.removeLocked(next)
		c.mu.Unlock()

		next.fn()
	}
}
