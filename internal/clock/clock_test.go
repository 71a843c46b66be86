package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMockClock_Now(t *testing.T) {
	c := NewMockClock(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
	assert.Equal(t, 5*time.Second, c.Since(epoch))

	later := epoch.Add(time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestMockClock_AfterFunc(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		advance time.Duration
		fired   bool
	}{
		{name: "not yet due", delay: 5 * time.Second, advance: 4999 * time.Millisecond, fired: false},
		{name: "exactly due", delay: 5 * time.Second, advance: 5 * time.Second, fired: true},
		{name: "overdue", delay: 5 * time.Second, advance: time.Minute, fired: true},
		{name: "zero delay", delay: 0, advance: 0, fired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewMockClock(epoch)
			fired := false
			c.AfterFunc(tt.delay, func() { fired = true })

			c.Advance(tt.advance)
			assert.Equal(t, tt.fired, fired)
		})
	}
}

func TestMockClock_Stop(t *testing.T) {
	c := NewMockClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	require.Equal(t, 1, c.Pending())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Hour)
	assert.False(t, fired)
}

func TestMockClock_StopAfterFire(t *testing.T) {
	c := NewMockClock(epoch)
	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)

	assert.False(t, timer.Stop())
}

func TestMockClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewMockClock(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	c.Advance(10 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestMockClock_RescheduleFromCallback(t *testing.T) {
	c := NewMockClock(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		c.AfterFunc(5*time.Second, tick)
	}
	c.AfterFunc(5*time.Second, tick)

	c.Advance(5 * time.Second)
	assert.Equal(t, 1, count, "rescheduled timer is not due yet")

	c.Advance(5 * time.Second)
	assert.Equal(t, 2, count)

	next, ok := c.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(15*time.Second), next)
}

func TestRealClock_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	RealClock{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestRealClock_Stop(t *testing.T) {
	timer := RealClock{}.AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
}
