// Package stream consumes the controller's live stats feed: a websocket
// that pushes one complete SystemStats JSON document per frame.
//
// A Client holds at most one connection. When that connection is lost, or
// a dial fails, it schedules a single new attempt after a fixed delay and
// keeps doing so until Close. Frames that do not decode are dropped and
// never affect the connection.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/telemetry"
)

// DefaultReconnectDelay is the fixed wait between a connection loss and
// the next attempt.
const DefaultReconnectDelay = 5 * time.Second

// State is the connection state of a Client.
type State int

const (
	Idle State = iota
	Connecting
	Connected
	Reconnecting
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New(errors.ErrStream, "Stats stream is closed", "")

// Client is a reconnecting stats stream consumer.
type Client struct {
	url         string
	dialer      *websocket.Dialer
	header      http.Header
	delay       time.Duration
	readTimeout time.Duration
	clock       clock.Clock
	log         logger.Logger
	metrics     *telemetry.Metrics
	onState     func(State)

	mu       sync.Mutex
	gen      uint64
	conn     *websocket.Conn
	timer    clock.Timer
	state    State
	closed   bool
	handlers []func(resource.SystemStats)
	latest   *resource.SystemStats
}

// Option configures a Client.
type Option func(*Client)

// WithDialer sets the websocket dialer, e.g. one that tunnels over SSH.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithHeader sets headers sent on the handshake.
func WithHeader(h http.Header) Option {
	return func(c *Client) { c.header = h.Clone() }
}

// WithReconnectDelay overrides DefaultReconnectDelay.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithReadTimeout treats a connection that delivers nothing for d as lost.
// Zero disables the check.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) { c.readTimeout = d }
}

// WithClock sets the clock that schedules reconnects.
func WithClock(cl clock.Clock) Option {
	return func(c *Client) { c.clock = cl }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records dials, reconnects and frame outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithStateHandler is called after every state change.
func WithStateHandler(fn func(State)) Option {
	return func(c *Client) { c.onState = fn }
}

// New creates an idle Client for the websocket at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		header: http.Header{},
		delay:  DefaultReconnectDelay,
		clock:  clock.RealClock{},
		log:    logger.NewEnvLogger("[stream]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the stream endpoint.
func (c *Client) URL() string {
	return c.url
}

// OnSnapshot registers fn to receive every decoded snapshot. fn runs on the
// client's read goroutine.
func (c *Client) OnSnapshot(fn func(resource.SystemStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// State returns the connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latest returns the most recent snapshot.
func (c *Client) Latest() (resource.SystemStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return resource.SystemStats{}, false
	}
	return c.latest.Clone(), true
}

// Connect opens a connection, replacing any existing one and cancelling
// any pending reconnect. If the dial fails, a reconnect is scheduled and
// the dial error is returned; the client keeps retrying until Close.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	c.stopTimerLocked()
	if c.conn != nil {
		c.log.Debug("superseding existing connection")
		_ = c.conn.Close()
		c.conn = nil
		c.metrics.SetConnected(false)
	}
	c.mu.Unlock()

	return c.dial(ctx, gen)
}

// Close cancels any pending reconnect and closes the connection. No
// further attempts are made. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.gen++
	c.stopTimerLocked()
	conn := c.conn
	c.conn = nil
	notify := c.setStateLocked(Closed)
	c.mu.Unlock()

	var err error
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = conn.Close()
		c.metrics.SetConnected(false)
	}
	notify()
	return err
}

func (c *Client) dial(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	notify := c.setStateLocked(Connecting)
	c.mu.Unlock()
	notify()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	c.metrics.ObserveDial(err)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		c.scheduleLocked(gen)
		notify = c.setStateLocked(Reconnecting)
		c.mu.Unlock()
		notify()
		c.log.Debug("dial %s failed: %v; retrying in %s", c.url, err, c.delay)
		return errors.WrapWithCode(err, errors.ErrStream,
			fmt.Sprintf("Cannot connect to stats stream at %s", c.url),
			fmt.Sprintf("Retrying every %s", c.delay))
	}
	c.conn = conn
	notify = c.setStateLocked(Connected)
	c.mu.Unlock()

	c.metrics.SetConnected(true)
	notify()
	c.log.Debug("connected to %s", c.url)
	go c.readLoop(gen, conn)
	return nil
}

func (c *Client) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		if c.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.lost(gen, conn, err)
			return
		}

		stats, err := resource.DecodeSystemStats(data)
		if err != nil {
			c.metrics.ObserveFrame(telemetry.FrameDropped)
			c.log.Debug("dropped frame: %v", err)
			continue
		}

		c.mu.Lock()
		if c.closed || gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.latest = &stats
		handlers := append([]func(resource.SystemStats){}, c.handlers...)
		c.mu.Unlock()

		c.metrics.ObserveFrame(telemetry.FrameDecoded)
		for _, h := range handlers {
			h(stats.Clone())
		}
	}
}

// lost handles the end of a connection this client did not close itself.
func (c *Client) lost(gen uint64, conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	_ = conn.Close()
	c.scheduleLocked(gen)
	notify := c.setStateLocked(Reconnecting)
	c.mu.Unlock()

	c.metrics.SetConnected(false)
	notify()
	c.log.Debug("connection lost: %v; reconnecting in %s", cause, c.delay)
}

func (c *Client) scheduleLocked(gen uint64) {
	c.stopTimerLocked()
	c.timer = c.clock.AfterFunc(c.delay, func() { c.retry(gen) })
	c.metrics.ObserveReconnectScheduled()
}

func (c *Client) retry(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	_ = c.dial(context.Background(), gen)
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// setStateLocked records s and returns a func that notifies the state
// handler; call it after releasing the lock.
func (c *Client) setStateLocked(s State) func() {
	if c.state == s || c.onState == nil {
		c.state = s
		return func() {}
	}
	c.state = s
	fn := c.onState
	return func() { fn(s) }
}
