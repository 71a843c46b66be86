package controller

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// ServiceBackend lists and acts on services.
type ServiceBackend struct {
	Client *Client
}

// Services returns the service backend for c.
func (c *Client) Services() ServiceBackend {
	return ServiceBackend{Client: c}
}

// List returns all services.
func (b ServiceBackend) List(ctx context.Context) ([]resource.Service, error) {
	return b.Client.ListServices(ctx)
}

// Apply runs a service action.
func (b ServiceBackend) Apply(ctx context.Context, req resource.ActionRequest) error {
	if req.Kind != resource.KindService {
		return kindMismatch(resource.KindService, req)
	}
	return b.Client.ServiceAction(ctx, req.TargetID, req.Action)
}

// PortBackend lists ports. Ports are read-only.
type PortBackend struct {
	Client *Client
}

// Ports returns the port backend for c.
func (c *Client) Ports() PortBackend {
	return PortBackend{Client: c}
}

// List returns all ports.
func (b PortBackend) List(ctx context.Context) ([]resource.Port, error) {
	return b.Client.ListPorts(ctx)
}

// Apply always fails; the controller exposes no port mutations.
func (b PortBackend) Apply(_ context.Context, req resource.ActionRequest) error {
	return errors.New(errors.ErrInvalid,
		fmt.Sprintf("Cannot %s a port", req.Action),
		"Ports are read-only; manage access with firewall rules")
}

// FirewallBackend lists, creates and deletes firewall rules, and turns the
// firewall itself on and off.
type FirewallBackend struct {
	Client *Client
}

// Firewall returns the firewall backend for c.
func (c *Client) Firewall() FirewallBackend {
	return FirewallBackend{Client: c}
}

// List returns all rules.
func (b FirewallBackend) List(ctx context.Context) ([]resource.FirewallRule, error) {
	return b.Client.ListFirewallRules(ctx)
}

// Apply creates or deletes a rule, or toggles the firewall. Response
// bodies are ignored.
func (b FirewallBackend) Apply(ctx context.Context, req resource.ActionRequest) error {
	if req.Kind != resource.KindFirewallRule {
		return kindMismatch(resource.KindFirewallRule, req)
	}
	switch req.Action {
	case resource.ActionCreate:
		if req.Rule == nil {
			return errors.New(errors.ErrInvalid, "Rule creation needs a rule", "")
		}
		return b.Client.CreateFirewallRule(ctx, *req.Rule)
	case resource.ActionDelete:
		id, err := req.RuleID()
		if err != nil {
			return err
		}
		return b.Client.DeleteFirewallRule(ctx, id)
	case resource.ActionEnable, resource.ActionDisable:
		return b.Client.SetFirewallEnabled(ctx, req.Action == resource.ActionEnable)
	default:
		return errors.New(errors.ErrInvalid,
			fmt.Sprintf("Action %q is not supported for firewall rules", req.Action), "")
	}
}

func kindMismatch(want resource.Kind, req resource.ActionRequest) error {
	return errors.New(errors.ErrInvalid,
		fmt.Sprintf("Cannot apply %s request to %s backend", req.Kind, want), "")
}
