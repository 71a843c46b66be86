package resource

import "fmt"

// RuleAction is what a firewall rule does with matching traffic.
type RuleAction string

const (
	RuleAllow RuleAction = "allow"
	RuleDeny  RuleAction = "deny"
)

// FirewallRule is a rule as stored by the controller. ID is assigned by the
// controller when the rule is created.
type FirewallRule struct {
	ID          int        `json:"id"`
	Action      RuleAction `json:"action" validate:"oneof=allow deny"`
	Protocol    Protocol   `json:"protocol" validate:"oneof=tcp udp any"`
	Port        int        `json:"port" validate:"min=1,max=65535"`
	Source      string     `json:"source" validate:"omitempty,cidr|ip"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
}

// SourceLabel renders an empty source as "any".
func (r FirewallRule) SourceLabel() string {
	if r.Source == "" {
		return "any"
	}
	return r.Source
}

// FirewallRuleRequest is the body of a rule creation request.
type FirewallRuleRequest struct {
	Action      RuleAction `json:"action" validate:"oneof=allow deny"`
	Protocol    Protocol   `json:"protocol" validate:"oneof=tcp udp any"`
	Port        int        `json:"port" validate:"min=1,max=65535"`
	Source      string     `json:"source" validate:"omitempty,cidr|ip"`
	Description string     `json:"description" validate:"max=256"`
}

// DefaultRuleRequest is the starting point for a new rule: allow tcp/80
// from any source.
func DefaultRuleRequest() FirewallRuleRequest {
	return FirewallRuleRequest{
		Action:   RuleAllow,
		Protocol: ProtocolTCP,
		Port:     80,
	}
}

// Validate checks the request before it is sent.
func (r FirewallRuleRequest) Validate() error {
	return validateStruct(r)
}

func (r FirewallRuleRequest) String() string {
	source := r.Source
	if source == "" {
		source = "any"
	}
	return fmt.Sprintf("%s %s/%d from %s", r.Action, r.Protocol, r.Port, source)
}
