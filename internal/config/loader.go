package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".hostdeck.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/hostdeck"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. HOSTDECK_CONTROLLER_URL.
	EnvPrefix = "HOSTDECK"
)

// Load reads config from path, applies HOSTDECK_* environment overrides and
// merges defaults. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'hostdeck init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .hostdeck.yaml in current directory
// 3. .hostdeck.yaml in parent directories (stops at git root or home)
// 4. ~/.config/hostdeck/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if isGitRoot(dir) {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// Resolve finds, loads and validates the config. It returns the path that
// was used, empty when running on defaults.
func Resolve(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal; viper only consults the environment for keys it knows.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("controller.url", d.Controller.URL)
	v.SetDefault("controller.stream_path", d.Controller.StreamPath)
	v.SetDefault("controller.timeout", d.Controller.Timeout)
	v.SetDefault("controller.insecure_skip_verify", d.Controller.InsecureSkipVerify)
	v.SetDefault("controller.ssh", d.Controller.SSH)
	v.SetDefault("controller.strict_host_key_checking", d.Controller.StrictHostKeyChecking)
	v.SetDefault("stream.reconnect_delay", d.Stream.ReconnectDelay)
	v.SetDefault("stream.handshake_timeout", d.Stream.HandshakeTimeout)
	v.SetDefault("stream.read_timeout", d.Stream.ReadTimeout)
	v.SetDefault("monitor.history", d.Monitor.History)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
	v.SetDefault("output.color", d.Output.Color)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		source := "your config"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	if cfg.Controller.Headers == nil {
		cfg.Controller.Headers = make(map[string]string)
	}
	for name, value := range cfg.Controller.Headers {
		cfg.Controller.Headers[name] = Expand(value)
	}
	cfg.Controller.SSH = Expand(cfg.Controller.SSH)

	return cfg, nil
}

// Expand replaces ${VAR} and $VAR with environment values. Unset variables
// become empty, matching shell behavior.
func Expand(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.ExpandEnv(s)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
