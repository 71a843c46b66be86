package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

var (
	firewallYes  bool
	firewallRule RuleFlags
)

var firewallCmd = &cobra.Command{
	Use:     "firewall",
	Aliases: []string{"fw"},
	Short:   "List and edit firewall rules",
	Long: `List the controller's firewall rules, add a rule, delete one by id, or
turn the whole firewall on and off.

Examples:
  hostdeck firewall
  hostdeck firewall add --action allow --protocol tcp --port 443
  hostdeck firewall add --action deny --port 5432 --source 0.0.0.0/0
  hostdeck firewall delete 3 --yes
  hostdeck firewall disable`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return firewallList(cmd)
	},
}

var firewallListCmd = &cobra.Command{
	Use:   "list",
	Short: "List firewall rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return firewallList(cmd)
	},
}

var firewallAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a firewall rule",
	Long: `Add a firewall rule. The controller assigns the id; the rule list is
fetched again afterwards and printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := firewallRule.Request()
		if err != nil {
			return err
		}
		return firewallMutate(cmd, resource.CreateRule(rule))
	},
}

var firewallDeleteCmd = &cobra.Command{
	Use:               "delete <id>",
	Aliases:           []string{"rm"},
	Short:             "Delete a firewall rule",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cobra.NoFileCompletions,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ParseRuleID(args[0])
		if err != nil {
			return err
		}
		return firewallMutate(cmd, resource.DeleteRule(id))
	},
}

// newFirewallToggleCmd builds the enable or disable subcommand. Rules are
// kept either way; the re-listed table shows whether they are enforced.
func newFirewallToggleCmd(enabled bool) *cobra.Command {
	req := resource.SetFirewall(enabled)
	short := "Stop enforcing firewall rules"
	if enabled {
		short = "Enforce firewall rules"
	}
	return &cobra.Command{
		Use:   string(req.Action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return firewallMutate(cmd, req)
		},
	}
}

func firewallList(cmd *cobra.Command) error {
	return withSession(cmd.Context(), func(s *session) error {
		coll := s.firewall()
		defer coll.Close()
		return listCollection(cmd.Context(), cmd.OutOrStdout(), coll, ui.RulesTable)
	})
}

func firewallMutate(cmd *cobra.Command, req resource.ActionRequest) error {
	return withSession(cmd.Context(), func(s *session) error {
		coll := s.firewall()
		defer coll.Close()
		return runAction(cmd.Context(), cmd, coll, req, firewallYes, ui.RulesTable)
	})
}

func init() {
	firewallCmd.PersistentFlags().BoolVarP(&firewallYes, "yes", "y", false, "skip the confirmation prompt")

	def := resource.DefaultRuleRequest()
	firewallAddCmd.Flags().StringVar(&firewallRule.Action, "action", string(def.Action), "allow or deny")
	firewallAddCmd.Flags().StringVar(&firewallRule.Protocol, "protocol", string(def.Protocol), "tcp, udp or any")
	firewallAddCmd.Flags().IntVar(&firewallRule.Port, "port", def.Port, "port number (1-65535)")
	firewallAddCmd.Flags().StringVar(&firewallRule.Source, "source", "", "source IP or CIDR (default: any)")
	firewallAddCmd.Flags().StringVar(&firewallRule.Description, "description", "", "free-form note")

	firewallCmd.AddCommand(firewallListCmd)
	firewallCmd.AddCommand(firewallAddCmd)
	firewallCmd.AddCommand(firewallDeleteCmd)
	firewallCmd.AddCommand(newFirewallToggleCmd(true))
	firewallCmd.AddCommand(newFirewallToggleCmd(false))
}
