package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hostdeck only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest hostdeck release")
	}

	if err := validateController(cfg.Controller); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'controller' section in your .hostdeck.yaml.")
	}

	if err := validateStream(cfg.Stream); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'stream' section in your .hostdeck.yaml.")
	}

	if cfg.Monitor.History < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("monitor.history must be at least 1, got %d", cfg.Monitor.History),
			"Set monitor.history to the number of samples to keep, e.g. 60.")
	}

	if cfg.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Listen); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("metrics.listen '%s' is not a host:port address", cfg.Metrics.Listen),
				"Use something like 127.0.0.1:9465, or leave it empty to disable metrics.")
		}
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .hostdeck.yaml.")
	}

	return nil
}

func validateController(c ControllerConfig) error {
	if c.URL == "" {
		return fmt.Errorf("controller.url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("controller.url '%s' doesn't parse: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("controller.url must use http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("controller.url '%s' has no host", c.URL)
	}
	if !strings.HasPrefix(c.StreamPath, "/") {
		return fmt.Errorf("controller.stream_path must start with '/', got '%s'", c.StreamPath)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("controller.timeout must be positive, got %s", c.Timeout)
	}
	for name := range c.Headers {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " :\r\n") {
			return fmt.Errorf("controller.headers has an invalid header name '%s'", name)
		}
	}
	return nil
}

func validateStream(s StreamConfig) error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"stream.reconnect_delay", s.ReconnectDelay},
		{"stream.handshake_timeout", s.HandshakeTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if s.ReadTimeout < 0 {
		return fmt.Errorf("stream.read_timeout can't be negative, got %s", s.ReadTimeout)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	switch o.Color {
	case "", "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("output.color must be auto, always or never, got '%s'", o.Color)
}
