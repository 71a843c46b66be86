package monitor

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/stream"
)

func newTestModel(t *testing.T) (Model, *fakeSource, *clock.MockClock) {
	t.Helper()
	src := &fakeSource{state: stream.Idle}
	clk := clock.NewMockClock(time.Unix(1_700_000_000, 0))
	m := NewModel(context.Background(), src, Options{
		Endpoint: "ws://localhost:8443/ws/stats",
		History:  30,
		Clock:    clk,
		Logger:   logger.Noop(),
	})
	t.Cleanup(m.bridge.close)
	return m, src, clk
}

// receive pulls the next bridged snapshot and feeds it to Update.
func receive(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.bridge.wait()()
	require.IsType(t, snapshotMsg{}, msg)
	next, cmd := m.Update(msg)
	require.NotNil(t, cmd, "model keeps waiting for snapshots")
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_SubscribesToSource(t *testing.T) {
	_, src, _ := newTestModel(t)
	assert.Len(t, src.handlers, 1)
}

func TestModel_SnapshotUpdatesState(t *testing.T) {
	m, src, clk := newTestModel(t)

	_, ok := m.Latest()
	assert.False(t, ok)
	assert.Equal(t, -1, m.SecondsSinceUpdate())

	src.emit(sampleStats(42, 0, 0))
	m = receive(t, m)

	got, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, 42.0, got.CPU.UsagePercent)
	assert.Equal(t, []float64{42}, m.History().Last(SeriesCPU, 10))
	assert.Equal(t, 0, m.SecondsSinceUpdate())

	clk.Advance(3 * time.Second)
	assert.Equal(t, 3, m.SecondsSinceUpdate())
}

func TestModel_BridgeKeepsNewest(t *testing.T) {
	m, src, _ := newTestModel(t)

	src.emit(sampleStats(10, 0, 0))
	src.emit(sampleStats(20, 0, 0))
	src.emit(sampleStats(30, 0, 0))
	m = receive(t, m)

	got, _ := m.Latest()
	assert.Equal(t, 30.0, got.CPU.UsagePercent)
	assert.Equal(t, 1, m.History().Len(SeriesCPU))
}

func TestModel_ClosedBridgeDoesNotBlock(t *testing.T) {
	m, src, _ := newTestModel(t)
	m.bridge.close()

	src.emit(sampleStats(10, 0, 0))
	assert.Nil(t, m.bridge.wait()())
}

func TestBridge_ClosedNeverDelivers(t *testing.T) {
	for i := 0; i < 200; i++ {
		b := newBridge(clock.NewMockClock(time.Unix(0, 0)))
		b.push(sampleStats(10, 0, 0))
		b.close()
		b.push(sampleStats(20, 0, 0))

		require.Nil(t, b.wait()(), "iteration %d", i)
		assert.Empty(t, b.ch, "push after close must not queue")
	}
}

func TestModel_TickPollsState(t *testing.T) {
	m, src, _ := newTestModel(t)
	src.setState(stream.Reconnecting)

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, stream.Reconnecting, m.State())
	assert.Contains(t, m.renderHeader(), "reconnecting")
}

func TestModel_ConnectErrorShownUntilSnapshot(t *testing.T) {
	m, src, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	src.connectErr = stderrors.New("dial tcp 127.0.0.1:8443: connect: connection refused")
	msg := m.connectCmd()()
	assert.Equal(t, 1, src.connects)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.Contains(t, m.View(), "connection refused")
	assert.Contains(t, m.View(), "Waiting for the first snapshot from ws://localhost:8443/ws/stats")

	src.emit(sampleStats(5, 0, 0))
	m = receive(t, m)
	assert.NotContains(t, m.View(), "connection refused")
}

func TestModel_Keys(t *testing.T) {
	t.Run("quit", func(t *testing.T) {
		for _, k := range []string{"q", "ctrl+c"} {
			m, _, _ := newTestModel(t)
			next, cmd := m.Update(key(k))
			m = next.(Model)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, m.View())
		}
	})

	t.Run("help toggles and esc closes", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		next, _ := m.Update(key("?"))
		m = next.(Model)
		assert.Contains(t, m.View(), "Keyboard Shortcuts")

		next, _ = m.Update(key("esc"))
		m = next.(Model)
		assert.NotContains(t, m.View(), "Keyboard Shortcuts")
	})

	t.Run("reconnect", func(t *testing.T) {
		m, src, _ := newTestModel(t)
		_, cmd := m.Update(key("r"))
		require.NotNil(t, cmd)
		assert.Equal(t, connectResultMsg{}, cmd())
		assert.Equal(t, 1, src.connects)
	})
}

func TestModel_ViewRendersCards(t *testing.T) {
	m, src, clk := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	m = next.(Model)

	src.emit(sampleStats(42, 1000, 1000))
	m = receive(t, m)
	clk.Advance(time.Second)
	src.emit(sampleStats(45, 3048, 2024))
	m = receive(t, m)

	view := m.View()
	for _, want := range []string{
		"hostdeck monitor", "web-01",
		"CPU", "45.0%", "48.5°C",
		"Memory", "8.0 GB / 16.0 GB",
		"Disk", "128.0 GB / 512.0 GB",
		"Network", "2.0 KB/s", "1.0 KB/s",
		"System", "3d 4h 12m", "0.50 0.75 1.00",
	} {
		assert.Contains(t, view, want)
	}
}

func TestModel_CardLayout(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.width = 120
	cols, w := m.cardLayout()
	assert.Equal(t, 2, cols)
	assert.Equal(t, 57, w)

	m.width = 60
	cols, w = m.cardLayout()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 57, w)

	m.width = 20
	_, w = m.cardLayout()
	assert.Equal(t, minCardWidth, w)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 GB", formatBytes(2<<30))

	assert.Equal(t, "900 B/s", FormatRate(900))
	assert.Equal(t, "2.0 KB/s", FormatRate(2048))
	assert.Equal(t, "1.5 MB/s", FormatRate(1.5*1024*1024))

	assert.Equal(t, "2m 5s", formatUptime(125))
	assert.Equal(t, "4h 12m", formatUptime(4*3600+12*60))
	assert.Equal(t, "1d 0h 0m", formatUptime(86400))
}

func TestStateIndicator(t *testing.T) {
	assert.Equal(t, "◉ live", StateIndicator(stream.Connected, 0))
	assert.Equal(t, "◐ connecting", StateIndicator(stream.Connecting, 0))
	assert.Equal(t, "◓ reconnecting", StateIndicator(stream.Reconnecting, 1))
	assert.Equal(t, "◌ closed", StateIndicator(stream.Closed, 0))
	assert.Equal(t, "○ idle", StateIndicator(stream.Idle, 0))
}
