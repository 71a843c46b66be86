package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:8443", cfg.Controller.URL)
	assert.Equal(t, "/ws/stats", cfg.Controller.StreamPath)
	assert.Equal(t, 10*time.Second, cfg.Controller.Timeout)
	assert.True(t, cfg.Controller.StrictHostKeyChecking)
	assert.NotNil(t, cfg.Controller.Headers)
	assert.Equal(t, 5*time.Second, cfg.Stream.ReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.Stream.HandshakeTimeout)
	assert.Equal(t, 30*time.Second, cfg.Stream.ReadTimeout)
	assert.Equal(t, 60, cfg.Monitor.History)
	assert.Empty(t, cfg.Metrics.Listen)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_MergesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `version: 1
controller:
  url: https://router.lan:9443
  headers:
    X-Api-Key: abc123
stream:
  reconnect_delay: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://router.lan:9443", cfg.Controller.URL)
	assert.Equal(t, "/ws/stats", cfg.Controller.StreamPath, "unset keys keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Stream.ReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.Stream.HandshakeTimeout)
	// viper lowercases map keys; header names are case-insensitive anyway.
	assert.Equal(t, "abc123", cfg.Controller.Headers["x-api-key"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "controller:\n  url: http://from-file:8443\n")

	t.Setenv("HOSTDECK_CONTROLLER_URL", "http://from-env:8443")
	t.Setenv("HOSTDECK_STREAM_RECONNECT_DELAY", "750ms")
	t.Setenv("HOSTDECK_MONITOR_HISTORY", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8443", cfg.Controller.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Stream.ReconnectDelay)
	assert.Equal(t, 120, cfg.Monitor.History)
}

func TestLoad_EmptyPathUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("HOSTDECK_METRICS_LISTEN", "127.0.0.1:9465")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8443", cfg.Controller.URL)
	assert.Equal(t, "127.0.0.1:9465", cfg.Metrics.Listen)
}

func TestLoad_ExpandsHeadersAndSSH(t *testing.T) {
	t.Setenv("HOSTDECK_TEST_TOKEN", "s3cret")
	t.Setenv("HOSTDECK_TEST_GATEWAY", "admin@gw.lan")
	path := writeConfig(t, t.TempDir(), `controller:
  headers:
    Authorization: Bearer ${HOSTDECK_TEST_TOKEN}
  ssh: ${HOSTDECK_TEST_GATEWAY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", cfg.Controller.Headers["authorization"])
	assert.Equal(t, "admin@gw.lan", cfg.Controller.SSH)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	bad := writeConfig(t, dir, "controller: [not, a, map\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	wrongType := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, os.WriteFile(wrongType, []byte("stream:\n  reconnect_delay: soon\n"), 0644))
	_, err = Load(wrongType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid config format")
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "version: 1\n")
		got, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("parent directory", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("HOME", t.TempDir())
		path := writeConfig(t, root, "version: 1\n")
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))
		t.Chdir(nested)

		got, err := Find("")
		require.NoError(t, err)
		gotEval, _ := filepath.EvalSymlinks(got)
		wantEval, _ := filepath.EvalSymlinks(path)
		assert.Equal(t, wantEval, gotEval)
	})

	t.Run("stops at git root", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("HOME", t.TempDir())
		writeConfig(t, root, "version: 1\n")
		repo := filepath.Join(root, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
		sub := filepath.Join(repo, "sub")
		require.NoError(t, os.MkdirAll(sub, 0755))
		t.Chdir(sub)

		got, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("global config", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		require.NoError(t, os.MkdirAll(filepath.Dir(global), 0755))
		require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0644))
		t.Chdir(t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, got)
	})
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "monitor:\n  history: 0\n")

	_, used, err := Resolve(path)
	require.Error(t, err)
	assert.Equal(t, path, used)
	assert.Contains(t, err.Error(), "monitor.history")

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("monitor:\n  history: 10\n"), 0644))
	cfg, used, err := Resolve(good)
	require.NoError(t, err)
	assert.Equal(t, good, used)
	assert.Equal(t, 10, cfg.Monitor.History)
}

func TestWriteAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Controller.URL = "https://10.0.0.1:8443"
	cfg.Controller.SSH = "gateway"
	cfg.Controller.Headers["X-Api-Key"] = "k"
	cfg.Stream.ReconnectDelay = 3 * time.Second
	cfg.Metrics.Listen = "127.0.0.1:9465"

	require.NoError(t, Write(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# hostdeck configuration")
	assert.Contains(t, content, "reconnect_delay: 3s")
	assert.Contains(t, content, "timeout: 10s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Controller.URL, loaded.Controller.URL)
	assert.Equal(t, "gateway", loaded.Controller.SSH)
	assert.Equal(t, "k", loaded.Controller.Headers["x-api-key"])
	assert.Equal(t, 3*time.Second, loaded.Stream.ReconnectDelay)
	assert.Equal(t, 30*time.Second, loaded.Stream.ReadTimeout)
	assert.Equal(t, "127.0.0.1:9465", loaded.Metrics.Listen)

	err = Write(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, Write(path, cfg, true))
}

func TestMarshal_EmptyHeaders(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, string(data), "headers: {}")
	assert.Contains(t, string(data), `ssh: ""`)
}
