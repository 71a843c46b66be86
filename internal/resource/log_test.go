package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

func TestLogFilter_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  LogFilter
		wantErr string
	}{
		{name: "empty", filter: LogFilter{}},
		{name: "full", filter: LogFilter{Source: "auth.log", Level: LogError, Search: "ssh", Since: now.Add(-time.Hour), Until: now, Limit: 50}},
		{name: "unknown level", filter: LogFilter{Level: "fatal"}, wantErr: "Invalid log filter"},
		{name: "negative limit", filter: LogFilter{Limit: -1}, wantErr: "Invalid log filter"},
		{name: "limit too large", filter: LogFilter{Limit: MaxLogLimit + 1}, wantErr: "Invalid log filter"},
		{name: "inverted window", filter: LogFilter{Since: now, Until: now.Add(-time.Minute)}, wantErr: "ends before it starts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrInvalid))
		})
	}
}

func TestLogFilter_Query(t *testing.T) {
	assert.Empty(t, LogFilter{}.Query())

	since := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	q := LogFilter{Source: "syslog", Level: LogWarning, Search: "disk full", Since: since, Limit: 20}.Query()
	assert.Equal(t, "syslog", q.Get("source"))
	assert.Equal(t, "warning", q.Get("level"))
	assert.Equal(t, "disk full", q.Get("search"))
	assert.Equal(t, "2026-03-01T09:00:00Z", q.Get("startTime"))
	assert.Empty(t, q.Get("endTime"))
	assert.Equal(t, "20", q.Get("limit"))
}

func TestLogFilter_Match(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := LogEntry{Timestamp: at, Source: "auth.log", Level: LogWarning, Message: "Failed password for root from 10.0.0.9"}

	tests := []struct {
		name   string
		filter LogFilter
		want   bool
	}{
		{name: "empty matches", filter: LogFilter{}, want: true},
		{name: "source", filter: LogFilter{Source: "auth.log"}, want: true},
		{name: "other source", filter: LogFilter{Source: "syslog"}, want: false},
		{name: "level", filter: LogFilter{Level: LogWarning}, want: true},
		{name: "other level", filter: LogFilter{Level: LogError}, want: false},
		{name: "search ignores case", filter: LogFilter{Search: "failed PASSWORD"}, want: true},
		{name: "search miss", filter: LogFilter{Search: "accepted"}, want: false},
		{name: "inside window", filter: LogFilter{Since: at.Add(-time.Minute), Until: at.Add(time.Minute)}, want: true},
		{name: "window bounds inclusive", filter: LogFilter{Since: at, Until: at}, want: true},
		{name: "before window", filter: LogFilter{Since: at.Add(time.Second)}, want: false},
		{name: "after window", filter: LogFilter{Until: at.Add(-time.Second)}, want: false},
		{name: "limit ignored", filter: LogFilter{Limit: 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(entry))
		})
	}
}
