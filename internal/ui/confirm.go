package ui

import (
	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// ConfirmPrompt is the text of a yes/no question.
type ConfirmPrompt struct {
	Title       string
	Description string
	// Destructive defaults the answer to No and labels the button plainly.
	Destructive bool
}

// Confirm asks the operator a yes/no question on the terminal. It fails
// without asking when stdin or stdout is not a terminal.
func Confirm(p ConfirmPrompt) (bool, error) {
	if !IsInteractive() {
		return false, errors.New(errors.ErrWorkflow,
			"Can't ask for confirmation without a terminal",
			"Re-run with --yes to skip the prompt")
	}

	ok := !p.Destructive
	affirmative := "Yes"
	if p.Destructive {
		affirmative = "Yes, do it"
	}
	field := huh.NewConfirm().
		Title(p.Title).
		Description(p.Description).
		Affirmative(affirmative).
		Negative("No").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrWorkflow,
			"Failed to get user input",
			"Re-run with --yes to skip the prompt")
	}
	return ok, nil
}
