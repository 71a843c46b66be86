package workflow

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// Prompt is what the operator is asked before an action runs.
type Prompt struct {
	Title       string
	Description string
	Destructive bool
	Request     resource.ActionRequest
}

// Prompt describes the pending action. ok is false outside
// PendingConfirmation.
func (w *Workflow) Prompt() (p Prompt, ok bool) {
	s := w.State()
	if s.Phase != PendingConfirmation {
		return Prompt{}, false
	}
	return PromptFor(s.Request), true
}

// PromptFor builds the confirmation text for req.
func PromptFor(req resource.ActionRequest) Prompt {
	title := req.String()
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:] + "?"
	}
	return Prompt{
		Title:       title,
		Description: describe(req),
		Destructive: req.Destructive(),
		Request:     req,
	}
}

func describe(req resource.ActionRequest) string {
	if req.IsFirewallToggle() {
		if req.Action == resource.ActionEnable {
			return "Every enabled rule will be enforced again."
		}
		return "No rules will be enforced and all traffic will be accepted."
	}
	switch req.Action {
	case resource.ActionStart:
		return fmt.Sprintf("%s will be started now.", req.TargetID)
	case resource.ActionStop:
		return fmt.Sprintf("%s will stop and anything depending on it may fail.", req.TargetID)
	case resource.ActionRestart:
		return fmt.Sprintf("%s will be stopped and started again.", req.TargetID)
	case resource.ActionEnable:
		return fmt.Sprintf("%s will start automatically at boot.", req.TargetID)
	case resource.ActionDisable:
		return fmt.Sprintf("%s will no longer start at boot.", req.TargetID)
	case resource.ActionCreate:
		if req.Rule != nil && req.Rule.Action == resource.RuleDeny {
			return "Matching traffic will be dropped, including existing sessions."
		}
		return "Matching traffic will be accepted."
	case resource.ActionDelete:
		return fmt.Sprintf("Rule %s will be removed from the firewall.", req.TargetID)
	}
	return ""
}
