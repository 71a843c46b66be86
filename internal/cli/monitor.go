package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/monitor"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/stream"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

// defaultSnapshotWait bounds --once when stream.read_timeout is zero.
const defaultSnapshotWait = 30 * time.Second

var monitorOnce bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live CPU, memory, disk and network dashboard",
	Long: `Open a full-screen dashboard fed by the controller's stats stream.

The stream reconnects on its own after a drop; the header shows whether
data is live. With --once (or --json), wait for one snapshot, print it and
exit.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Reconnect now
  up/k down/j Scroll
  ?           Show help

Examples:
  hostdeck monitor
  hostdeck monitor --once
  hostdeck monitor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			src := s.stream()
			defer src.Close()

			if monitorOnce || machineMode {
				return monitorSnapshot(cmd.Context(), cmd.OutOrStdout(), src, snapshotWait(s.cfg.Stream.ReadTimeout))
			}
			if !isInteractive() {
				return errors.New(errors.ErrStream,
					"The dashboard needs a terminal",
					"Use 'hostdeck monitor --once' to print a single snapshot")
			}
			return monitor.Run(cmd.Context(), src, monitor.Options{
				Endpoint: src.URL(),
				History:  s.cfg.Monitor.History,
				Logger:   logger.NewEnvLogger("[monitor]"),
			})
		})
	},
}

func snapshotWait(readTimeout time.Duration) time.Duration {
	if readTimeout <= 0 {
		return defaultSnapshotWait
	}
	return readTimeout
}

// monitorSnapshot connects src, waits up to wait for the first snapshot and
// prints it.
func monitorSnapshot(ctx context.Context, w io.Writer, src *stream.Client, wait time.Duration) error {
	got := make(chan resource.SystemStats, 1)
	src.OnSnapshot(func(stats resource.SystemStats) {
		select {
		case got <- stats:
		default:
		}
	})

	if err := src.Connect(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrStream,
			fmt.Sprintf("Can't open the stats stream at %s", src.URL()),
			"Check controller.url and controller.stream_path, then try 'hostdeck status'")
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case stats := <-got:
		if machineMode {
			return WriteJSONSuccess(w, stats)
		}
		fmt.Fprintln(w, formatSnapshot(stats))
		return nil
	case <-timer.C:
		return errors.New(errors.ErrStream,
			fmt.Sprintf("No stats arrived within %s", wait),
			"The controller accepted the connection but sent nothing; check its logs")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func formatSnapshot(s resource.SystemStats) string {
	label := func(name string) string { return ui.MutedStyle().Render(name) }
	host := s.System.Hostname
	if host == "" {
		host = "host"
	}
	return fmt.Sprintf("%s  %s %5.1f%%  %s %5.1f%%  %s %5.1f%%  %s %s",
		ui.HeadingStyle().Render(host),
		label("cpu"), s.CPU.UsagePercent,
		label("mem"), s.Memory.UsagePercent,
		label("disk"), s.Disk.UsagePercent,
		label("up"), time.Duration(s.System.Uptime)*time.Second,
	)
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "print one snapshot and exit")
}
