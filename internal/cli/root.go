package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/config"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

// Global flags
var (
	cfgFile     string
	verboseFlag bool
	noColorFlag bool
)

// Config resolved in PersistentPreRunE.
var (
	currentConfig     *config.Config
	currentConfigPath string
)

// annotationNoConfig marks commands that run without a valid config file
// and fall back to defaults when loading fails.
const annotationNoConfig = "hostdeck/no-config"

var rootCmd = &cobra.Command{
	Use:   "hostdeck",
	Short: "Manage and watch a host through its controller",
	Long: `hostdeck talks to a host controller over HTTP: list and start or stop
services, inspect listening ports, edit firewall rules, and watch live CPU,
memory, disk and network stats.

Every change asks for confirmation first. Pass --yes to skip the prompt in
scripts.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .hostdeck.yaml in this or a parent directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

func setupGlobals(cmd *cobra.Command, _ []string) error {
	if verboseFlag {
		_ = os.Setenv(logger.DebugEnv, "1")
	}

	cfg, path, err := config.Resolve(cfgFile)
	if err != nil {
		if cmd.Annotations[annotationNoConfig] != "true" {
			return err
		}
		logger.Default().Debug("ignoring config error for %s: %v", cmd.Name(), err)
		cfg, path = config.DefaultConfig(), ""
	}
	currentConfig = cfg
	currentConfigPath = path
	logger.Default().Debug("config: %s", describeConfigPath(path))

	ui.ConfigureColor(cfg.Output.Color, noColorFlag || machineMode)
	return nil
}

func describeConfigPath(path string) string {
	if path == "" {
		return "defaults (no config file found)"
	}
	return path
}

// Execute runs the root command. Errors are printed here, as JSON in
// --json mode, and returned for the exit code.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if _, ok := errors.GetExitCode(err); ok {
		// Output already written.
		return err
	}

	if machineMode {
		if isUnknownCommandError(err) {
			_ = WriteJSONError(os.Stdout, ErrCodeUnknownCommand, err.Error(),
				"Run 'hostdeck --help' for the list of commands", map[string]string{"command": extractUnknownCommand(err)})
		} else {
			_ = WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	fmt.Fprintln(os.Stderr, err)
	if isUnknownCommandError(err) {
		fmt.Fprintln(os.Stderr, "Run 'hostdeck --help' for usage.")
	}
	return err
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls foo out of `unknown command "foo" for "hostdeck"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
