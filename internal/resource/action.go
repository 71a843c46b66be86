package resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Kind names a resource collection.
type Kind string

const (
	KindService      Kind = "service"
	KindPort         Kind = "port"
	KindFirewallRule Kind = "firewall_rule"
)

func (k Kind) String() string {
	switch k {
	case KindFirewallRule:
		return "firewall rule"
	default:
		return string(k)
	}
}

// Action is a mutation verb.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
	ActionCreate  Action = "create"
	ActionDelete  Action = "delete"
)

// ServiceActions lists the actions accepted for services, in menu order.
var ServiceActions = []Action{ActionStart, ActionStop, ActionRestart, ActionEnable, ActionDisable}

// allowedActions is the kind/action matrix. Ports are read-only.
var allowedActions = map[Kind][]Action{
	KindService:      ServiceActions,
	KindPort:         nil,
	KindFirewallRule: {ActionCreate, ActionDelete, ActionEnable, ActionDisable},
}

// ActionRequest describes one mutation. TargetID is the service name for
// services and the decimal rule id for a rule deletion. Rule carries the
// payload of a rule creation, which has no TargetID yet. Enabling or
// disabling the firewall as a whole has neither.
type ActionRequest struct {
	Kind     Kind                 `json:"targetKind"`
	TargetID string               `json:"targetId,omitempty"`
	Action   Action               `json:"action"`
	Rule     *FirewallRuleRequest `json:"rule,omitempty"`
}

// ServiceAction builds a request to run action on the named service.
func ServiceAction(name string, action Action) ActionRequest {
	return ActionRequest{Kind: KindService, TargetID: name, Action: action}
}

// CreateRule builds a request to add a firewall rule.
func CreateRule(rule FirewallRuleRequest) ActionRequest {
	return ActionRequest{Kind: KindFirewallRule, Action: ActionCreate, Rule: &rule}
}

// DeleteRule builds a request to remove the firewall rule with the given id.
func DeleteRule(id int) ActionRequest {
	return ActionRequest{Kind: KindFirewallRule, TargetID: strconv.Itoa(id), Action: ActionDelete}
}

// SetFirewall builds a request to turn the whole firewall on or off.
func SetFirewall(enabled bool) ActionRequest {
	action := ActionDisable
	if enabled {
		action = ActionEnable
	}
	return ActionRequest{Kind: KindFirewallRule, Action: action}
}

// IsFirewallToggle reports whether r enables or disables the firewall
// rather than acting on one rule.
func (r ActionRequest) IsFirewallToggle() bool {
	return r.Kind == KindFirewallRule && (r.Action == ActionEnable || r.Action == ActionDisable)
}

// Validate enforces the kind/action matrix and the per-action target rules.
// It does not check whether the target exists; the controller decides that.
func (r ActionRequest) Validate() error {
	allowed, ok := allowedActions[r.Kind]
	if !ok {
		return errors.New(errors.ErrInvalid,
			fmt.Sprintf("Unknown resource kind %q", r.Kind),
			"Use one of: service, port, firewall_rule")
	}
	if len(allowed) == 0 {
		return errors.New(errors.ErrInvalid,
			fmt.Sprintf("%s resources are read-only", r.Kind),
			"")
	}
	if !containsAction(allowed, r.Action) {
		return errors.New(errors.ErrInvalid,
			fmt.Sprintf("Action %q is not supported for %s", r.Action, r.Kind),
			fmt.Sprintf("Supported actions: %s", joinActions(allowed)))
	}

	switch {
	case r.Kind == KindService:
		if r.TargetID == "" {
			return errors.New(errors.ErrInvalid, "Service name is required", "")
		}
	case r.IsFirewallToggle():
		if r.TargetID != "" || r.Rule != nil {
			return errors.New(errors.ErrInvalid,
				fmt.Sprintf("Cannot %s a single firewall rule", r.Action),
				"Delete the rule instead, or toggle the whole firewall")
		}
	case r.Action == ActionCreate:
		if r.Rule == nil {
			return errors.New(errors.ErrInvalid, "Rule creation needs a rule", "")
		}
		if r.TargetID != "" {
			return errors.New(errors.ErrInvalid, "Rule creation cannot target an existing id", "")
		}
		if err := r.Rule.Validate(); err != nil {
			return errors.WrapWithCode(err, errors.ErrInvalid, "Invalid firewall rule",
				"Action is allow|deny, protocol tcp|udp|any, port 1-65535, source an IP or CIDR")
		}
	case r.Action == ActionDelete:
		if _, err := r.RuleID(); err != nil {
			return err
		}
	}
	return nil
}

// RuleID parses TargetID as a firewall rule id.
func (r ActionRequest) RuleID() (int, error) {
	id, err := strconv.Atoi(r.TargetID)
	if err != nil || id < 1 {
		return 0, errors.New(errors.ErrInvalid,
			fmt.Sprintf("Invalid firewall rule id %q", r.TargetID),
			"Rule ids are positive integers; run 'hostdeck firewall list'")
	}
	return id, nil
}

// Destructive reports whether the action removes access or capacity.
// Prompts for destructive actions are rendered with a warning.
func (r ActionRequest) Destructive() bool {
	switch r.Action {
	case ActionStop, ActionDisable, ActionDelete:
		return true
	case ActionCreate:
		return r.Rule != nil && r.Rule.Action == RuleDeny
	}
	return false
}

func (r ActionRequest) String() string {
	switch {
	case r.Action == ActionCreate && r.Rule != nil:
		return fmt.Sprintf("create %s %s", r.Kind, r.Rule)
	case r.Kind == KindService:
		return fmt.Sprintf("%s service %s", r.Action, r.TargetID)
	case r.IsFirewallToggle():
		return fmt.Sprintf("%s firewall", r.Action)
	default:
		return fmt.Sprintf("%s %s %s", r.Action, r.Kind, r.TargetID)
	}
}

func containsAction(actions []Action, a Action) bool {
	for _, candidate := range actions {
		if candidate == a {
			return true
		}
	}
	return false
}

func joinActions(actions []Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
