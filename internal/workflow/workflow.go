// Package workflow gates mutations behind an explicit confirmation step.
//
// A Workflow is a three-state machine:
//
//	Idle --Request--> PendingConfirmation --Confirm--> Executing --> Idle
//	                          |
//	                          +--Cancel--> Idle
//
// Only one action is pending or executing at a time; Request outside Idle
// fails with ErrBusy.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// Phase is the workflow state tag.
type Phase int

const (
	Idle Phase = iota
	PendingConfirmation
	Executing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PendingConfirmation:
		return "pending-confirmation"
	case Executing:
		return "executing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the current phase plus the action it refers to. Request is the
// zero value in Idle.
type State struct {
	Phase   Phase
	Request resource.ActionRequest
}

// Mutator executes a confirmed action. *collection.Controller satisfies it.
type Mutator interface {
	Mutate(ctx context.Context, req resource.ActionRequest) error
}

var (
	// ErrBusy is returned by Request when an action is already pending or
	// executing.
	ErrBusy = errors.New(errors.ErrBusy,
		"Another action is awaiting confirmation or running",
		"Confirm or cancel it first")

	// ErrNoPending is returned by Confirm and Cancel outside
	// PendingConfirmation.
	ErrNoPending = errors.New(errors.ErrWorkflow,
		"No action is awaiting confirmation",
		"")

	// ErrCancelled is returned by Run when the operator declines.
	ErrCancelled = errors.New(errors.ErrWorkflow,
		"Action cancelled",
		"")
)

// Workflow is the confirmation state machine for one collection.
type Workflow struct {
	mutator Mutator
	log     logger.Logger

	mu        sync.Mutex
	state     State
	lastErr   error
	observers []func(from, to State)
}

// New creates an idle Workflow that delegates confirmed actions to m.
func New(m Mutator, log logger.Logger) *Workflow {
	if log == nil {
		log = logger.NewEnvLogger("[workflow]")
	}
	return &Workflow{mutator: m, log: log}
}

// OnTransition registers fn to observe every state change.
func (w *Workflow) OnTransition(fn func(from, to State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the outcome of the most recent execution: nil on
// success or if nothing has executed yet.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Request moves Idle to PendingConfirmation for req.
func (w *Workflow) Request(req resource.ActionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return w.transition(func(s State) (State, error) {
		if s.Phase != Idle {
			return s, ErrBusy
		}
		return State{Phase: PendingConfirmation, Request: req}, nil
	})
}

// Cancel returns PendingConfirmation to Idle without executing.
func (w *Workflow) Cancel() error {
	return w.transition(func(s State) (State, error) {
		if s.Phase != PendingConfirmation {
			return s, ErrNoPending
		}
		return State{Phase: Idle}, nil
	})
}

// Confirm executes the pending action and returns to Idle whatever the
// outcome. The mutation error, if any, is returned and kept in LastError.
func (w *Workflow) Confirm(ctx context.Context) error {
	var req resource.ActionRequest
	err := w.transition(func(s State) (State, error) {
		if s.Phase != PendingConfirmation {
			return s, ErrNoPending
		}
		req = s.Request
		return State{Phase: Executing, Request: s.Request}, nil
	})
	if err != nil {
		return err
	}

	w.log.Debug("executing %s", req)
	mutErr := w.mutator.Mutate(ctx, req)
	if mutErr != nil {
		w.log.Debug("%s failed: %v", req, mutErr)
	}

	_ = w.transition(func(s State) (State, error) {
		w.lastErr = mutErr
		return State{Phase: Idle}, nil
	})
	return mutErr
}

// Run drives one action through the whole workflow: Request, ask confirm,
// then Confirm or Cancel. It returns ErrCancelled if confirm declines, and
// cancels the pending action if confirm itself fails.
func (w *Workflow) Run(ctx context.Context, req resource.ActionRequest, confirm func(Prompt) (bool, error)) error {
	if err := w.Request(req); err != nil {
		return err
	}
	prompt, _ := w.Prompt()

	ok, err := confirm(prompt)
	if err != nil || !ok {
		_ = w.Cancel()
		if err != nil {
			return err
		}
		return ErrCancelled
	}
	return w.Confirm(ctx)
}

func (w *Workflow) transition(fn func(State) (State, error)) error {
	w.mu.Lock()
	from := w.state
	to, err := fn(from)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.state = to
	observers := append([]func(from, to State){}, w.observers...)
	w.mu.Unlock()

	for _, o := range observers {
		o(from, to)
	}
	return nil
}
