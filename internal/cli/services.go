package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

var servicesYes bool

var servicesCmd = &cobra.Command{
	Use:     "services",
	Aliases: []string{"svc"},
	Short:   "List and control services on the host",
	Long: `List the services the controller manages, or start, stop, restart,
enable or disable one of them.

Examples:
  hostdeck services
  hostdeck services restart nginx
  hostdeck services stop postgresql --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return servicesList(cmd)
	},
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return servicesList(cmd)
	},
}

func servicesList(cmd *cobra.Command) error {
	return withSession(cmd.Context(), func(s *session) error {
		coll := s.services()
		defer coll.Close()
		return listCollection(cmd.Context(), cmd.OutOrStdout(), coll, ui.ServicesTable)
	})
}

// newServiceActionCmd builds the subcommand for one service action.
func newServiceActionCmd(action resource.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:               fmt.Sprintf("%s <name>", action),
		Short:             short,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serviceAction(cmd, args[0], action)
		},
	}
}

func serviceAction(cmd *cobra.Command, name string, action resource.Action) error {
	req := resource.ServiceAction(name, action)
	if err := req.Validate(); err != nil {
		return err
	}
	return withSession(cmd.Context(), func(s *session) error {
		coll := s.services()
		defer coll.Close()
		return runAction(cmd.Context(), cmd, coll, req, servicesYes, ui.ServicesTable)
	})
}

func init() {
	servicesCmd.PersistentFlags().BoolVarP(&servicesYes, "yes", "y", false, "skip the confirmation prompt")

	servicesCmd.AddCommand(servicesListCmd)
	servicesCmd.AddCommand(newServiceActionCmd(resource.ActionStart, "Start a service"))
	servicesCmd.AddCommand(newServiceActionCmd(resource.ActionStop, "Stop a service"))
	servicesCmd.AddCommand(newServiceActionCmd(resource.ActionRestart, "Restart a service"))
	servicesCmd.AddCommand(newServiceActionCmd(resource.ActionEnable, "Start a service at boot"))
	servicesCmd.AddCommand(newServiceActionCmd(resource.ActionDisable, "Stop starting a service at boot"))
}
