package resource

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// LogLevel is the severity of a log entry.
type LogLevel string

const (
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// MaxLogLimit caps how many entries one request may ask for.
const MaxLogLimit = 1000

// LogEntry is one line from a host log, as parsed by the controller.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Level       LogLevel  `json:"level"`
	Message     string    `json:"message"`
	User        string    `json:"user,omitempty"`
	IP          string    `json:"ip,omitempty"`
	ProcessName string    `json:"processName,omitempty"`
	ProcessID   int       `json:"processId,omitempty"`
}

// LogFilter narrows a log query. Zero fields match everything; Limit 0
// means the controller default.
type LogFilter struct {
	Source string    `json:"source,omitempty"`
	Level  LogLevel  `json:"level,omitempty" validate:"omitempty,oneof=debug info warning error"`
	Search string    `json:"search,omitempty"`
	Since  time.Time `json:"startTime,omitempty"`
	Until  time.Time `json:"endTime,omitempty"`
	Limit  int       `json:"limit,omitempty" validate:"gte=0,lte=1000"`
}

// Validate checks the filter before it is sent.
func (f LogFilter) Validate() error {
	if err := validateStruct(f); err != nil {
		return errors.WrapWithCode(err, errors.ErrInvalid, "Invalid log filter",
			"Level is debug|info|warning|error and limit is 0-1000")
	}
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		return errors.New(errors.ErrInvalid, "Log window ends before it starts",
			"Make --until later than --since")
	}
	return nil
}

// Query encodes the filter as URL query parameters. Times are RFC 3339.
func (f LogFilter) Query() url.Values {
	q := url.Values{}
	if f.Source != "" {
		q.Set("source", f.Source)
	}
	if f.Level != "" {
		q.Set("level", string(f.Level))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if !f.Since.IsZero() {
		q.Set("startTime", f.Since.UTC().Format(time.RFC3339))
	}
	if !f.Until.IsZero() {
		q.Set("endTime", f.Until.UTC().Format(time.RFC3339))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Match reports whether e passes every set field except Limit. Search is
// a case-insensitive substring match on the message.
func (f LogFilter) Match(e LogEntry) bool {
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// LogSummary is the controller's aggregate view of its logs.
type LogSummary struct {
	TotalEntries   int            `json:"totalEntries"`
	ErrorCount     int            `json:"errorCount"`
	WarningCount   int            `json:"warningCount"`
	SourceCounts   map[string]int `json:"sourceCounts"`
	RecentErrors   []LogEntry     `json:"recentErrors"`
	LastUpdateTime time.Time      `json:"lastUpdateTime"`
}
