package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

var (
	logFlags LogFlags
	logStats bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show host logs collected by the controller",
	Long: `Show recent host log entries, oldest first, or a summary of them.

Logs are read-only. Filters are applied by the controller; --since is
relative to now.

Examples:
  hostdeck logs
  hostdeck logs --source auth.log --level warning
  hostdeck logs --search "failed password" --since 24h --limit 50
  hostdeck logs --stats`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if logStats {
			return logsSummary(cmd)
		}
		return logsList(cmd)
	},
}

func logsList(cmd *cobra.Command) error {
	filter, err := logFlags.Filter(time.Now())
	if err != nil {
		return err
	}
	return withSession(cmd.Context(), func(s *session) error {
		entries, err := s.client.ListLogs(cmd.Context(), filter)
		if err != nil {
			return wrapFetch(err, "log entries")
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), entries)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.LogsTable(entries))
		return nil
	})
}

func logsSummary(cmd *cobra.Command) error {
	return withSession(cmd.Context(), func(s *session) error {
		sum, err := s.client.LogStats(cmd.Context())
		if err != nil {
			return wrapFetch(err, "log stats")
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), sum)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.LogSummary(*sum))
		return nil
	})
}

// wrapFetch marks a failed read so --json reports FETCH_FAILED, or
// CONTROLLER_UNREACHABLE and NOT_FOUND from the cause.
func wrapFetch(err error, what string) error {
	if errors.IsCode(err, errors.ErrInvalid) {
		return err
	}
	return errors.WrapWithCode(err, errors.ErrFetch,
		"Failed to load "+what,
		"Check the controller with 'hostdeck status' and retry")
}

func init() {
	logsCmd.Flags().StringVar(&logFlags.Source, "source", "", "only this log source (e.g. auth.log, syslog)")
	logsCmd.Flags().StringVar(&logFlags.Level, "level", "", "only this level: debug, info, warning or error")
	logsCmd.Flags().StringVar(&logFlags.Search, "search", "", "case-insensitive text the message must contain")
	logsCmd.Flags().DurationVar(&logFlags.Since, "since", 0, "only entries newer than this, e.g. 30m or 24h")
	logsCmd.Flags().IntVar(&logFlags.Limit, "limit", 0, "at most this many entries, newest kept (controller default when 0)")
	logsCmd.Flags().BoolVar(&logStats, "stats", false, "show totals per source and recent errors instead of entries")
}
