// Package cli implements the hostdeck command-line interface.
//
// Each Cobra command resolves the config once (PersistentPreRunE), opens a
// session for the controller it names, and hands the work to the domain
// packages:
//
//	hostdeck services [list|start|stop|restart|enable|disable <name>]
//	hostdeck ports [list]
//	hostdeck firewall [list|add|delete <id>]
//	hostdeck monitor                - live stats dashboard
//	hostdeck status                 - controller health and latency
//	hostdeck init                   - create .hostdeck.yaml
//	hostdeck dev-controller         - in-memory controller for development
//
// # Sessions
//
// A session bundles the transport (direct or through an SSH tunnel), the
// controller client, the Prometheus metrics and, when metrics.listen is
// set, the metrics listener. Collections and the stats stream are built
// from it on demand and closed by the command that built them.
//
// # Actions
//
// Every change goes through a workflow.Workflow: the request is validated,
// the operator confirms it (or --yes answers for them), the collection
// applies it and lists again, and the refreshed list is printed. Without a
// terminal and without --yes, the action is not run.
//
// # Output
//
// --json switches every command to the JSONEnvelope format on stdout,
// including errors. Human output goes through the ui package's tables and
// styles, honoring --no-color and output.color.
package cli
