package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

func TestParseRuleAction(t *testing.T) {
	a, err := ParseRuleAction(" Deny ")
	require.NoError(t, err)
	assert.Equal(t, resource.RuleDeny, a)

	_, err = ParseRuleAction("drop")
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestParseProtocol(t *testing.T) {
	for _, in := range []string{"tcp", "UDP", "any"} {
		_, err := ParseProtocol(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseProtocol("icmp")
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestParseRuleID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRuleID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRuleFlags_Request(t *testing.T) {
	req, err := RuleFlags{Action: "allow", Protocol: "tcp", Port: 443, Source: " 192.168.1.0/24 ", Description: "lan https"}.Request()
	require.NoError(t, err)
	assert.Equal(t, resource.FirewallRuleRequest{
		Action:      resource.RuleAllow,
		Protocol:    resource.ProtocolTCP,
		Port:        443,
		Source:      "192.168.1.0/24",
		Description: "lan https",
	}, req)

	_, err = RuleFlags{Action: "allow", Protocol: "tcp", Port: 0}.Request()
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestLogFlags_Filter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		flags   LogFlags
		want    resource.LogFilter
		wantErr bool
	}{
		{name: "empty", flags: LogFlags{}, want: resource.LogFilter{}},
		{
			name:  "all set",
			flags: LogFlags{Source: " auth.log ", Level: "ERROR", Search: "ssh", Since: time.Hour, Limit: 20},
			want:  resource.LogFilter{Source: "auth.log", Level: resource.LogError, Search: "ssh", Since: now.Add(-time.Hour), Limit: 20},
		},
		{name: "warn alias", flags: LogFlags{Level: "warn"}, want: resource.LogFilter{Level: resource.LogWarning}},
		{name: "unknown level", flags: LogFlags{Level: "fatal"}, wantErr: true},
		{name: "negative since", flags: LogFlags{Since: -time.Minute}, wantErr: true},
		{name: "limit too large", flags: LogFlags{Limit: 5000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.Filter(now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
