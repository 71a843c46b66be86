package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// RuleFlags holds the --action/--protocol/--port/--source/--description
// flags of 'firewall add'.
type RuleFlags struct {
	Action      string
	Protocol    string
	Port        int
	Source      string
	Description string
}

// Request converts the flags into a validated rule request.
func (f RuleFlags) Request() (resource.FirewallRuleRequest, error) {
	action, err := ParseRuleAction(f.Action)
	if err != nil {
		return resource.FirewallRuleRequest{}, err
	}
	protocol, err := ParseProtocol(f.Protocol)
	if err != nil {
		return resource.FirewallRuleRequest{}, err
	}
	req := resource.FirewallRuleRequest{
		Action:      action,
		Protocol:    protocol,
		Port:        f.Port,
		Source:      strings.TrimSpace(f.Source),
		Description: f.Description,
	}
	if err := resource.CreateRule(req).Validate(); err != nil {
		return resource.FirewallRuleRequest{}, err
	}
	return req, nil
}

// ParseRuleAction accepts allow or deny, case-insensitively.
func ParseRuleAction(s string) (resource.RuleAction, error) {
	switch a := resource.RuleAction(strings.ToLower(strings.TrimSpace(s))); a {
	case resource.RuleAllow, resource.RuleDeny:
		return a, nil
	}
	return "", errors.New(errors.ErrInvalid,
		fmt.Sprintf("'%s' isn't a firewall action", s),
		"Use --action allow or --action deny")
}

// ParseProtocol accepts tcp, udp or any, case-insensitively.
func ParseProtocol(s string) (resource.Protocol, error) {
	switch p := resource.Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case resource.ProtocolTCP, resource.ProtocolUDP, resource.ProtocolAny:
		return p, nil
	}
	return "", errors.New(errors.ErrInvalid,
		fmt.Sprintf("'%s' isn't a protocol", s),
		"Use --protocol tcp, udp or any")
}

// ParseRuleID parses a firewall rule id argument.
func ParseRuleID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id < 1 {
		return 0, errors.New(errors.ErrInvalid,
			fmt.Sprintf("'%s' isn't a firewall rule id", arg),
			"Rule ids are positive integers; run 'hostdeck firewall list' to see them")
	}
	return id, nil
}

// LogFlags holds the filter flags of 'logs'.
type LogFlags struct {
	Source string
	Level  string
	Search string
	Since  time.Duration
	Limit  int
}

// Filter converts the flags into a validated log filter. Since is taken
// relative to now.
func (f LogFlags) Filter(now time.Time) (resource.LogFilter, error) {
	if f.Since < 0 {
		return resource.LogFilter{}, errors.New(errors.ErrInvalid,
			fmt.Sprintf("--since %s is negative", f.Since),
			"Use a duration like 30m or 24h")
	}
	filter := resource.LogFilter{
		Source: strings.TrimSpace(f.Source),
		Level:  resource.LogLevel(strings.ToLower(strings.TrimSpace(f.Level))),
		Search: f.Search,
		Limit:  f.Limit,
	}
	if filter.Level == "warn" {
		filter.Level = resource.LogWarning
	}
	if f.Since > 0 {
		filter.Since = now.Add(-f.Since)
	}
	if err := filter.Validate(); err != nil {
		return resource.LogFilter{}, err
	}
	return filter, nil
}
