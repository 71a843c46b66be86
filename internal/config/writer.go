package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

const fileHeader = `# hostdeck configuration
# Run 'hostdeck status' to check the controller, 'hostdeck monitor' for live stats.
# Every key can be overridden with HOSTDECK_<SECTION>_<KEY>, e.g. HOSTDECK_CONTROLLER_URL.

`

// Marshal renders cfg as YAML with durations in their string form.
func Marshal(cfg *Config) ([]byte, error) {
	doc := mapping(
		"version", scalar(fmt.Sprint(cfg.Version), "!!int"),
		"controller", mapping(
			"url", str(cfg.Controller.URL),
			"stream_path", str(cfg.Controller.StreamPath),
			"timeout", str(cfg.Controller.Timeout.String()),
			"insecure_skip_verify", boolean(cfg.Controller.InsecureSkipVerify),
			"headers", stringMap(cfg.Controller.Headers),
			"ssh", str(cfg.Controller.SSH),
			"strict_host_key_checking", boolean(cfg.Controller.StrictHostKeyChecking),
		),
		"stream", mapping(
			"reconnect_delay", str(cfg.Stream.ReconnectDelay.String()),
			"handshake_timeout", str(cfg.Stream.HandshakeTimeout.String()),
			"read_timeout", str(cfg.Stream.ReadTimeout.String()),
		),
		"monitor", mapping(
			"history", scalar(fmt.Sprint(cfg.Monitor.History), "!!int"),
		),
		"metrics", mapping(
			"listen", str(cfg.Metrics.Listen),
		),
		"output", mapping(
			"color", str(cfg.Output.Color),
		),
	)
	return yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}})
}

// Write saves cfg to path with a header comment. An existing file is only
// replaced when overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite")
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Failed to create directory: %s", dir),
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

func mapping(pairs ...any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(pairs); i += 2 {
		node.Content = append(node.Content, str(pairs[i].(string)), pairs[i+1].(*yaml.Node))
	}
	return node
}

func scalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func str(value string) *yaml.Node {
	return scalar(value, "!!str")
}

func boolean(value bool) *yaml.Node {
	return scalar(fmt.Sprint(value), "!!bool")
}

func stringMap(m map[string]string) *yaml.Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, str(m[k]))
	}
	node := mapping(pairs...)
	if len(keys) == 0 {
		node.Style = yaml.FlowStyle
	}
	return node
}
