package sshutil

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"
)

// matchWarningOnce limits the SSH config Match warning to once per process.
var matchWarningOnce sync.Once

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings parses user@host:port and fills the rest from the SSH
// config at configPath (default ~/.ssh/config). Explicit parts of host win
// over the config only for the user.
func resolveSSHSettings(host, configPath string) *sshSettings {
	settings := &sshSettings{
		port: "22",
		user: currentUser(),
	}

	explicitUser := false
	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		settings.user = host[:atIdx]
		host = host[atIdx+1:]
		explicitUser = true
	}

	if colonIdx := strings.LastIndex(host, ":"); colonIdx != -1 {
		potentialPort := host[colonIdx+1:]
		if isDigits(potentialPort) {
			settings.port = potentialPort
			host = host[:colonIdx]
		}
	}
	settings.hostname = host

	if configPath == "" {
		configPath = filepath.Join(homeDir(), ".ssh", "config")
	}

	// kevinburke/ssh_config does not understand Match, so only the part of
	// the file before the first Match block is parsed.
	content, matchLine, err := preprocessSSHConfig(configPath)
	if err != nil {
		return settings
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings
	}

	hostFound := false
	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		settings.hostname = hostname
		hostFound = true
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		settings.port = port
		hostFound = true
	}
	if user, _ := cfg.Get(host, "User"); user != "" && !explicitUser {
		settings.user = user
		hostFound = true
	}
	if identity, _ := cfg.Get(host, "IdentityFile"); identity != "" {
		settings.identityFile = expandPath(identity)
		hostFound = true
	}

	if matchLine > 0 && !hostFound {
		matchWarningOnce.Do(func() {
			emitWarning(fmt.Sprintf(
				"Host '%s' not found in SSH config (config has a Match block at line %d that may hide later entries). "+
					"If this host is defined after line %d, move it earlier in %s.",
				host, matchLine, matchLine, configPath))
		})
	}

	return settings
}

// preprocessSSHConfig returns the config content up to the first Match
// directive and the 1-based line of that directive (0 if none).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
