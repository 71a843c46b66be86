package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

// exitDegraded is the exit code when the controller answers but does not
// report "ok".
const exitDegraded = 2

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the controller is reachable",
	Long: `Call the controller's health endpoint and report round-trip latency.

Examples:
  hostdeck status
  hostdeck status --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			return statusCommand(cmd, s)
		})
	},
}

// StatusOutput is the --json payload of the status command.
type StatusOutput struct {
	Controller string `json:"controller"`
	Config     string `json:"config,omitempty"`
	Tunnel     string `json:"tunnel,omitempty"`
	Status     string `json:"status"`
	LatencyMS  int64  `json:"latency_ms"`
}

func statusCommand(cmd *cobra.Command, s *session) error {
	health, err := s.client.Health(cmd.Context())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Controller at %s isn't responding", s.client.BaseURL()),
			"Check controller.url, or start a local one with 'hostdeck dev-controller'")
	}

	out := StatusOutput{
		Controller: s.client.BaseURL(),
		Config:     currentConfigPath,
		Tunnel:     s.cfg.Controller.SSH,
		Status:     health.Status,
		LatencyMS:  health.Latency.Milliseconds(),
	}
	if machineMode {
		if err := WriteJSONSuccess(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		printStatus(cmd.OutOrStdout(), out, health.Latency)
	}
	if health.Status != "ok" {
		return errors.NewExitError(exitDegraded)
	}
	return nil
}

func printStatus(w io.Writer, out StatusOutput, latency time.Duration) {
	symbol := ui.SuccessStyle().Render(ui.SymbolSuccess)
	if out.Status != "ok" {
		symbol = ui.WarningStyle().Render(ui.SymbolUnknown)
	}
	fmt.Fprintf(w, "%s %s %s\n", symbol, out.Controller, ui.MutedStyle().Render("("+formatLatency(latency)+")"))
	fmt.Fprintf(w, "  status: %s\n", out.Status)
	if out.Tunnel != "" {
		fmt.Fprintf(w, "  tunnel: via %s\n", out.Tunnel)
	}
	config := out.Config
	if config == "" {
		config = ui.MutedStyle().Render("defaults")
	}
	fmt.Fprintf(w, "  config: %s\n", config)
}

// formatLatency formats a duration as a human-readable latency string.
func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
