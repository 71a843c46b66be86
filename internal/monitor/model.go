package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/stream"
)

// Source is the live feed behind the dashboard. *stream.Client satisfies it.
type Source interface {
	OnSnapshot(fn func(resource.SystemStats))
	Connect(ctx context.Context) error
	State() stream.State
}

// Options configures the dashboard.
type Options struct {
	// Endpoint is shown in the header, e.g. the stream URL.
	Endpoint string
	// History is how many samples each sparkline keeps.
	History int
	Clock   clock.Clock
	Logger  logger.Logger
}

const (
	tickInterval = 250 * time.Millisecond
	headerHeight = 2
	footerHeight = 2
)

type tickMsg time.Time

type connectResultMsg struct {
	err error
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx      context.Context
	source   Source
	bridge   *bridge
	clock    clock.Clock
	log      logger.Logger
	endpoint string

	history    *History
	latest     *resource.SystemStats
	lastUpdate time.Time
	state      stream.State
	lastErr    error
	frame      int

	width         int
	height        int
	showHelp      bool
	quitting      bool
	viewport      viewport.Model
	viewportReady bool
}

// NewModel builds a dashboard over src and subscribes to its snapshots.
// ctx bounds connection attempts made from the dashboard.
func NewModel(ctx context.Context, src Source, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[monitor]")
	}
	b := newBridge(opts.Clock)
	src.OnSnapshot(b.push)

	return Model{
		ctx:      ctx,
		source:   src,
		bridge:   b,
		clock:    opts.Clock,
		log:      opts.Logger,
		endpoint: opts.Endpoint,
		history:  NewHistory(opts.History),
		state:    src.State(),
	}
}

// Init connects the source and starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connectCmd(), m.bridge.wait(), m.tickCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.viewportReady {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(1, m.height-headerHeight-footerHeight)
		if !m.viewportReady {
			m.viewport = viewport.New(m.width, h)
			m.viewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = h
		}
		m.refreshViewport()

	case snapshotMsg:
		stats := msg.stats
		m.latest = &stats
		m.lastUpdate = msg.at
		m.lastErr = nil
		m.history.Push(stats, msg.at)
		m.refreshViewport()
		return m, m.bridge.wait()

	case tickMsg:
		m.state = m.source.State()
		m.frame++
		return m, m.tickCmd()

	case connectResultMsg:
		if msg.err != nil {
			m.log.Debug("connect: %v", msg.err)
			m.lastErr = msg.err
			m.refreshViewport()
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) connectCmd() tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		return connectResultMsg{err: src.Connect(ctx)}
	}
}

func (m *Model) refreshViewport() {
	if m.viewportReady {
		m.viewport.SetContent(m.renderBody())
	}
}

// Latest returns the snapshot on screen.
func (m Model) Latest() (resource.SystemStats, bool) {
	if m.latest == nil {
		return resource.SystemStats{}, false
	}
	return *m.latest, true
}

// State is the stream state as of the last tick.
func (m Model) State() stream.State {
	return m.state
}

// History exposes the sample buffers.
func (m Model) History() *History {
	return m.history
}

// SecondsSinceUpdate is the age of the newest snapshot, or -1 before the
// first one.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return -1
	}
	return int(m.clock.Since(m.lastUpdate).Seconds())
}
