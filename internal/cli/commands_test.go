package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/config"
	"github.com/rileyhilliard/hostdeck/internal/controller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

func TestServicesList(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "services")
	require.NoError(t, err)
	assert.Contains(t, out, "SERVICE")
	assert.Contains(t, out, "nginx")
	assert.Contains(t, out, "postgresql")
	assert.Contains(t, out, "○ inactive")
}

func TestServicesList_JSON(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "services", "list")
	require.NoError(t, err)

	var services []resource.Service
	env := decodeEnvelope(t, out, &services)
	assert.True(t, env.Success)
	require.Len(t, services, 4)
	assert.Equal(t, "nginx", services[0].Name)
}

func TestServiceAction_WithYes(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "services", "start", "postgresql", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Start service postgresql")
	assert.Contains(t, out, "SERVICE")

	for _, svc := range tc.server.Store().Services() {
		if svc.Name == "postgresql" {
			assert.Equal(t, resource.ServiceActive, svc.Status)
		}
	}
}

func TestServiceAction_WithoutYesNeedsTerminal(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "services", "stop", "nginx")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrWorkflow))

	for _, svc := range tc.server.Store().Services() {
		if svc.Name == "nginx" {
			assert.Equal(t, resource.ServiceActive, svc.Status, "declined action must not run")
		}
	}
}

func TestServiceAction_UnknownService(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "services", "restart", "ghost", "--yes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMutation))
	assert.True(t, controller.IsNotFound(err))
}

func TestPortsList_JSON(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "ports")
	require.NoError(t, err)

	var ports []resource.Port
	env := decodeEnvelope(t, out, &ports)
	assert.True(t, env.Success)
	require.NotEmpty(t, ports)
	for i := 1; i < len(ports); i++ {
		assert.LessOrEqual(t, ports[i-1].Number, ports[i].Number)
	}
}

func TestFirewallAdd_JSON(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json",
		"firewall", "add", "--action", "deny", "--protocol", "udp", "--port", "53", "--source", "10.0.0.0/8", "--yes")
	require.NoError(t, err)

	var result ActionResult[resource.FirewallRule]
	env := decodeEnvelope(t, out, &result)
	assert.True(t, env.Success)
	assert.Equal(t, resource.ActionCreate, result.Action.Action)
	require.Len(t, result.Items, 4)

	added := result.Items[3]
	assert.Equal(t, 4, added.ID)
	assert.Equal(t, resource.RuleDeny, added.Action)
	assert.Equal(t, resource.ProtocolUDP, added.Protocol)
	assert.Equal(t, 53, added.Port)
	assert.Equal(t, "10.0.0.0/8", added.Source)
}

func TestFirewallAdd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad protocol", []string{"--protocol", "icmp"}},
		{"bad action", []string{"--action", "drop"}},
		{"port out of range", []string{"--port", "70000"}},
		{"bad source", []string{"--source", "not-an-ip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := startTestController(t)
			args := append([]string{"--config", tc.configPath, "firewall", "add", "--yes"}, tt.args...)

			_, err := runCLI(t, args...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrInvalid))
			assert.Len(t, tc.server.Store().Rules(), 3)
		})
	}
}

func TestFirewallDelete(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "firewall", "delete", "2", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete firewall rule 2")
	assert.Len(t, tc.server.Store().Rules(), 2)
}

func TestFirewallDelete_Missing_JSONError(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "firewall", "delete", "99", "--yes")
	require.Error(t, err)
	assert.True(t, controller.IsNotFound(err))

	jsonErr := ErrorToJSON(err)
	assert.Equal(t, ErrCodeNotFound, jsonErr.Code)
	assert.Equal(t, map[string]int{"status": 404}, jsonErr.Details)
}

func TestFirewallDelete_BadID(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "firewall", "delete", "abc", "--yes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestFirewallDisable(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "firewall", "disable", "--yes")
	require.NoError(t, err)

	var result ActionResult[resource.FirewallRule]
	env := decodeEnvelope(t, out, &result)
	assert.True(t, env.Success)
	assert.Equal(t, resource.ActionDisable, result.Action.Action)
	require.Len(t, result.Items, 3, "rules survive a disable")
	for _, r := range result.Items {
		assert.False(t, r.Enabled)
	}
	assert.False(t, tc.server.Store().FirewallEnabled())

	out, err = runCLI(t, "--config", tc.configPath, "firewall", "enable", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Enable firewall")
	assert.True(t, tc.server.Store().FirewallEnabled())
}

func TestFirewallDisable_WithoutYesNeedsTerminal(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "firewall", "disable")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrWorkflow))
	assert.True(t, tc.server.Store().FirewallEnabled(), "declined action must not run")
}

func TestLogs(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "logs", "--source", "auth.log")
	require.NoError(t, err)
	assert.Contains(t, out, "MESSAGE")
	assert.Contains(t, out, "Failed password for root")
	assert.NotContains(t, out, "docker.service")
}

func TestLogs_JSONReflectsActions(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "firewall", "delete", "3", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "logs", "--source", "ufw.log", "--search", "deleted")
	require.NoError(t, err)

	var entries []resource.LogEntry
	env := decodeEnvelope(t, out, &entries)
	assert.True(t, env.Success)
	require.Len(t, entries, 1)
	assert.Equal(t, "Rule 3 deleted", entries[0].Message)
}

func TestLogs_Stats(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "logs", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "4 entries")
	assert.Contains(t, out, "Recent errors")

	out, err = runCLI(t, "--config", tc.configPath, "--json", "logs", "--stats")
	require.NoError(t, err)
	var sum resource.LogSummary
	decodeEnvelope(t, out, &sum)
	assert.Equal(t, 4, sum.TotalEntries)
	assert.Equal(t, 2, sum.SourceCounts["auth.log"])
}

func TestLogs_InvalidFilter(t *testing.T) {
	tc := startTestController(t)

	_, err := runCLI(t, "--config", tc.configPath, "logs", "--level", "fatal")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
	assert.Equal(t, ErrCodeInvalidRequest, ErrorToJSON(err).Code)
}

func TestLogs_Unreachable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Controller.URL = "http://127.0.0.1:1"
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Write(cfgPath, cfg, false))

	_, err := runCLI(t, "--config", cfgPath, "logs")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Equal(t, ErrCodeControllerDown, ErrorToJSON(err).Code)
}

func TestStatus(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "status: ok")
	assert.Contains(t, out, tc.configPath)
}

func TestStatus_JSON(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "status")
	require.NoError(t, err)

	var status StatusOutput
	env := decodeEnvelope(t, out, &status)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", status.Status)
	assert.GreaterOrEqual(t, status.LatencyMS, int64(0))
}

func TestStatus_Unreachable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Controller.URL = "http://127.0.0.1:1"
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Write(cfgPath, cfg, false))

	_, err := runCLI(t, "--config", cfgPath, "status")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	assert.Equal(t, ErrCodeControllerDown, ErrorToJSON(err).Code)
}

func TestMonitorOnce_JSON(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "--json", "monitor")
	require.NoError(t, err)

	var stats resource.SystemStats
	env := decodeEnvelope(t, out, &stats)
	assert.True(t, env.Success)
	assert.Equal(t, "web-01", stats.System.Hostname)
	assert.InDelta(t, 12.5, stats.CPU.UsagePercent, 0.001)
}

func TestMonitorOnce_Text(t *testing.T) {
	tc := startTestController(t)

	out, err := runCLI(t, "--config", tc.configPath, "monitor", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "web-01")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "1h0m0s")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "bogus")
	require.Error(t, err)
	assert.True(t, isUnknownCommandError(err))
	assert.Equal(t, "bogus", extractUnknownCommand(err))
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCLI(t, "--config", "/nonexistent/.hostdeck.yaml", "services")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	// Commands that don't need a config still run.
	out, err := runCLI(t, "--config", "/nonexistent/.hostdeck.yaml", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
