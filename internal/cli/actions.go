package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/collection"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/ui"
	"github.com/rileyhilliard/hostdeck/internal/workflow"
)

// isInteractive reports whether prompts can be shown. Tests replace it.
var isInteractive = ui.IsInteractive

// errNeedsConfirmation is returned when an action would prompt but there is
// nobody to answer.
var errNeedsConfirmation = errors.New(errors.ErrWorkflow,
	"This action needs confirmation",
	"Re-run with --yes to skip the prompt")

// ActionResult is the --json payload of a confirmed action: what ran and
// the collection as re-listed afterwards.
type ActionResult[T any] struct {
	Action resource.ActionRequest `json:"action"`
	Items  []T                    `json:"items"`
}

// confirmFunc answers a workflow prompt. --yes answers for the operator;
// otherwise a terminal is required.
func confirmFunc(yes bool) func(workflow.Prompt) (bool, error) {
	return func(p workflow.Prompt) (bool, error) {
		if yes {
			return true, nil
		}
		if machineMode || !isInteractive() {
			return false, errNeedsConfirmation
		}
		return ui.Confirm(ui.ConfirmPrompt{
			Title:       p.Title,
			Description: p.Description,
			Destructive: p.Destructive,
		})
	}
}

// runAction drives req through the confirmation workflow against coll and
// prints the refreshed collection with render.
func runAction[T any](ctx context.Context, cmd *cobra.Command, coll *collection.Controller[T], req resource.ActionRequest, yes bool, render func([]T) string) error {
	out := cmd.OutOrStdout()
	wf := workflow.New(coll, logger.NewEnvLogger("[workflow]"))

	var spinner *ui.Spinner
	showProgress := !machineMode && isInteractive()
	wf.OnTransition(func(from, to workflow.State) {
		switch {
		case to.Phase == workflow.Executing && showProgress:
			spinner = ui.NewSpinner(cmd.ErrOrStderr(), capitalize(to.Request.String()))
			spinner.Start()
		case from.Phase == workflow.Executing && spinner != nil:
			if wf.LastError() != nil {
				spinner.Fail()
			} else {
				spinner.Success()
			}
		}
	})

	err := wf.Run(ctx, req, confirmFunc(yes))
	if stderrors.Is(err, workflow.ErrCancelled) && !machineMode {
		fmt.Fprintln(out, ui.MutedStyle().Render("Cancelled."))
		return nil
	}
	if err != nil {
		return err
	}

	items := coll.Items()
	if machineMode {
		return WriteJSONSuccess(out, ActionResult[T]{Action: req, Items: items})
	}
	if spinner == nil {
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), capitalize(req.String()))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, render(items))
	return nil
}

// listCollection loads coll once and prints it.
func listCollection[T any](ctx context.Context, out io.Writer, coll *collection.Controller[T], render func([]T) string) error {
	if err := coll.Load(ctx); err != nil {
		return err
	}
	items := coll.Items()
	if machineMode {
		return WriteJSONSuccess(out, items)
	}
	fmt.Fprintln(out, render(items))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
