package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/ui"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List listening ports on the host",
	Long: `List the ports the controller reports, with the service behind each
one and any source addresses allowed through the firewall.

Ports are read-only; change access with 'hostdeck firewall'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsList(cmd)
	},
}

var portsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsList(cmd)
	},
}

func portsList(cmd *cobra.Command) error {
	return withSession(cmd.Context(), func(s *session) error {
		coll := s.ports()
		defer coll.Close()
		return listCollection(cmd.Context(), cmd.OutOrStdout(), coll, ui.PortsTable)
	})
}

func init() {
	portsCmd.AddCommand(portsListCmd)
}
