// Package collection keeps a local copy of one remote resource collection
// (services, ports or firewall rules) in step with the controller.
//
// The held items are always the last successful list response, in
// controller order. Mutations never patch them; a successful mutation is
// followed by exactly one list, and that list is what the caller sees.
// Fetches and mutations share one in-flight slot: an operation started
// while another is running fails with ErrBusy instead of interleaving.
package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/hostdeck/internal/clock"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/telemetry"
)

// Backend is the remote side of a collection.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Apply(ctx context.Context, req resource.ActionRequest) error
}

var (
	// ErrBusy is returned when a fetch or mutation is already in flight.
	ErrBusy = errors.New(errors.ErrBusy,
		"Another request is already in flight for this collection",
		"Wait for it to finish and try again")

	// ErrClosed is returned after Close, including for operations that
	// were in flight when Close was called.
	ErrClosed = errors.New(errors.ErrClosed,
		"Collection has been closed",
		"")
)

// State is a point-in-time view of a collection for rendering.
type State[T any] struct {
	Items []T
	// Loading is true while a list request is in flight, including the
	// list that follows a mutation.
	Loading  bool
	Mutating bool
	// Err is the last fetch or mutation failure, until ClearError or the
	// next successful list.
	Err       error
	Loaded    bool
	FetchedAt time.Time
}

// Controller manages one collection of T.
type Controller[T any] struct {
	kind    resource.Kind
	backend Backend[T]
	clock   clock.Clock
	log     logger.Logger
	metrics *telemetry.Metrics

	mu        sync.Mutex
	state     State[T]
	busy      bool
	closed    bool
	listeners []func(State[T])
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	clock   clock.Clock
	log     logger.Logger
	metrics *telemetry.Metrics
}

// WithClock sets the clock used for FetchedAt.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records fetch and mutation outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates an empty controller for kind backed by backend. Call Load to
// perform the first fetch.
func New[T any](kind resource.Kind, backend Backend[T], opts ...Option) *Controller[T] {
	o := options{
		clock: clock.RealClock{},
		log:   logger.NewEnvLogger("[collection]"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Controller[T]{
		kind:    kind,
		backend: backend,
		clock:   o.clock,
		log:     o.log,
		metrics: o.metrics,
		state:   State[T]{Items: []T{}},
	}
}

// Kind returns the resource kind this controller manages.
func (c *Controller[T]) Kind() resource.Kind {
	return c.kind
}

// OnChange registers fn to be called with the new state after every state
// change. fn runs on the goroutine that caused the change and must not call
// back into the controller synchronously.
func (c *Controller[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Items returns a copy of the held collection.
func (c *Controller[T]) Items() []T {
	return c.State().Items
}

// Err returns the current error value, or nil.
func (c *Controller[T]) Err() error {
	return c.State().Err
}

// Load performs the initial fetch.
func (c *Controller[T]) Load(ctx context.Context) error {
	_, err := c.List(ctx)
	return err
}

// List fetches the collection and replaces the held items with the
// response. On failure the previous items are kept, the error is recorded
// in State.Err, and an ErrFetch error is returned.
func (c *Controller[T]) List(ctx context.Context) ([]T, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	return c.fetch(ctx)
}

// Mutate validates and applies req, then lists once to resynchronize. On
// failure of the write the held items are untouched and an ErrMutation
// error is returned; errors from the controller stay reachable through
// errors.As and errors.Is. If the write succeeds but the follow-up list
// fails, the ErrFetch error from that list is returned.
func (c *Controller[T]) Mutate(ctx context.Context, req resource.ActionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Kind != c.kind {
		return errors.New(errors.ErrInvalid,
			fmt.Sprintf("Cannot %s on the %s collection", req, c.kind), "")
	}
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	c.update(func(s *State[T]) { s.Mutating = true })

	c.log.Debug("applying %s", req)
	err := c.backend.Apply(ctx, req)
	c.metrics.ObserveMutation(string(c.kind), string(req.Action), err)

	if err != nil {
		mutErr := errors.WrapWithCode(err, errors.ErrMutation,
			fmt.Sprintf("Failed to %s", req),
			mutationSuggestion(req))
		c.update(func(s *State[T]) {
			s.Mutating = false
			s.Err = mutErr
		})
		if c.isClosed() {
			return ErrClosed
		}
		return mutErr
	}

	c.update(func(s *State[T]) { s.Mutating = false })
	_, err = c.fetch(ctx)
	return err
}

// ClearError resets State.Err.
func (c *Controller[T]) ClearError() {
	c.update(func(s *State[T]) { s.Err = nil })
}

// Close tears the controller down. Results of in-flight operations are
// discarded and later operations fail with ErrClosed.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.listeners = nil
	c.state = State[T]{Items: []T{}}
}

func (c *Controller[T]) fetch(ctx context.Context) ([]T, error) {
	c.update(func(s *State[T]) { s.Loading = true })

	items, err := c.backend.List(ctx)
	c.metrics.ObserveFetch(string(c.kind), err)

	if c.isClosed() {
		c.log.Debug("discarding %s list result after close", c.kind)
		return nil, ErrClosed
	}

	if err != nil {
		fetchErr := errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Failed to list %ss", c.kind),
			"Check the controller with 'hostdeck status' and retry")
		c.update(func(s *State[T]) {
			s.Loading = false
			s.Err = fetchErr
		})
		return nil, fetchErr
	}

	held := make([]T, len(items))
	copy(held, items)
	now := c.clock.Now()
	c.update(func(s *State[T]) {
		s.Items = held
		s.Loading = false
		s.Loaded = true
		s.FetchedAt = now
		s.Err = nil
	})

	out := make([]T, len(held))
	copy(out, held)
	return out, nil
}

func (c *Controller[T]) acquire() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()
	return nil
}

func (c *Controller[T]) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// update applies fn to the state and notifies listeners. It is a no-op
// after Close.
func (c *Controller[T]) update(fn func(*State[T])) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fn(&c.state)
	snap := c.snapshotLocked()
	listeners := append([]func(State[T]){}, c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (c *Controller[T]) snapshotLocked() State[T] {
	s := c.state
	s.Items = make([]T, len(c.state.Items))
	copy(s.Items, c.state.Items)
	return s
}

func mutationSuggestion(req resource.ActionRequest) string {
	switch req.Kind {
	case resource.KindFirewallRule:
		return "Run 'hostdeck firewall list' to see the current rules"
	case resource.KindService:
		return "Run 'hostdeck services list' to see the current service state"
	}
	return ""
}
