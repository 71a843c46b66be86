package monitor

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// snapshotMsg carries one snapshot into the Update loop.
type snapshotMsg struct {
	stats resource.SystemStats
	at    time.Time
}

// bridge hands snapshots from the stream's read goroutine to Bubble Tea.
// It holds at most one pending snapshot; a newer one replaces it, so a slow
// render never blocks the stream.
type bridge struct {
	clock clock.Clock
	ch    chan snapshotMsg
	done  chan struct{}
	once  sync.Once
}

func newBridge(c clock.Clock) *bridge {
	return &bridge{
		clock: c,
		ch:    make(chan snapshotMsg, 1),
		done:  make(chan struct{}),
	}
}

func (b *bridge) push(s resource.SystemStats) {
	msg := snapshotMsg{stats: s, at: b.clock.Now()}
	for {
		if b.closed() {
			return
		}
		select {
		case b.ch <- msg:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// wait returns a command that blocks for the next snapshot. It yields nil
// once the bridge is closed, even if a snapshot is still pending.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		if b.closed() {
			return nil
		}
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *bridge) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.done) })
}
