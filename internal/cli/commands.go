package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for hostdeck.

Examples:
  # Bash
  hostdeck completion bash > /etc/bash_completion.d/hostdeck

  # Zsh
  hostdeck completion zsh > "${fpath[1]}/_hostdeck"

  # Fish
  hostdeck completion fish > ~/.config/fish/completions/hostdeck.fish`,
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrInvalid,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(firewallCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(devControllerCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
