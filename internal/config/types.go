package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .hostdeck.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Controller ControllerConfig `yaml:"controller" mapstructure:"controller"`
	Stream     StreamConfig     `yaml:"stream" mapstructure:"stream"`
	Monitor    MonitorConfig    `yaml:"monitor" mapstructure:"monitor"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// ControllerConfig describes how to reach the host controller.
type ControllerConfig struct {
	// URL is the controller base URL (http or https).
	URL string `yaml:"url" mapstructure:"url"`

	// StreamPath is the websocket path of the stats feed.
	StreamPath string `yaml:"stream_path" mapstructure:"stream_path"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// InsecureSkipVerify disables TLS certificate checks (self-signed controllers).
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`

	// Headers are sent with every request and the websocket handshake.
	// Values support ${VAR} expansion from the environment.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// SSH, when set, tunnels all controller traffic through this host.
	// Can be: hostname, user@hostname[:port], or SSH config alias.
	SSH string `yaml:"ssh" mapstructure:"ssh"`

	// StrictHostKeyChecking verifies the SSH host against known_hosts.
	StrictHostKeyChecking bool `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`
}

// StreamConfig controls the live stats connection.
type StreamConfig struct {
	// ReconnectDelay is the fixed wait before re-dialing a lost stream.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`

	// HandshakeTimeout bounds the websocket upgrade.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" mapstructure:"handshake_timeout"`

	// ReadTimeout treats a silent stream as lost. Zero disables it.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// MonitorConfig controls the dashboard.
type MonitorConfig struct {
	// History is how many samples the sparklines keep.
	History int `yaml:"history" mapstructure:"history"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	// Listen is host:port for /metrics. Empty disables the listener.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Controller: ControllerConfig{
			URL:                   "http://localhost:8443",
			StreamPath:            "/ws/stats",
			Timeout:               10 * time.Second,
			Headers:               make(map[string]string),
			StrictHostKeyChecking: true,
		},
		Stream: StreamConfig{
			ReconnectDelay:   5 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			ReadTimeout:      30 * time.Second,
		},
		Monitor: MonitorConfig{
			History: 60,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
