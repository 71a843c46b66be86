package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/devcontroller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

var (
	devListen   string
	devInterval time.Duration
)

var devControllerCmd = &cobra.Command{
	Use:   "dev-controller",
	Short: "Run an in-memory controller for development",
	Long: `Serve the controller API from memory: a few seeded services and
firewall rules, ports derived from the services, and live stats sampled
from this machine on the websocket stream.

Changes last until the process exits.

Examples:
  hostdeck dev-controller
  hostdeck dev-controller --listen 127.0.0.1:9000 --interval 1s`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if devInterval <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Interval must be positive, got %s", devInterval),
				"Use a duration like 1s or 2s")
		}

		gin.SetMode(gin.ReleaseMode)
		ln, err := net.Listen("tcp", devListen)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Can't listen on %s", devListen),
				"Pick a free address with --listen")
		}

		srv := devcontroller.New(
			devcontroller.WithSampler(devcontroller.HostSampler{}),
			devcontroller.WithInterval(devInterval),
			devcontroller.WithLogger(logger.NewEnvLogger("[dev-controller]")),
		)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Dev controller listening on %s %s\n",
			ui.SuccessStyle().Render(ui.SymbolSuccess), ln.Addr(), ui.MutedStyle().Render("(Ctrl+C to stop)"))
		return srv.Serve(cmd.Context(), ln)
	},
}

func init() {
	devControllerCmd.Flags().StringVar(&devListen, "listen", ":8443", "address to listen on")
	devControllerCmd.Flags().DurationVar(&devInterval, "interval", devcontroller.DefaultInterval, "stats push interval")
}
