package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// KeyEnv names an extra private key tried before the default key files.
const KeyEnv = "HOSTDECK_SSH_KEY"

// buildSSHConfig assembles auth methods and host key verification for the
// resolved settings. Encrypted keys found along the way are recorded on
// settings so the caller can suggest ssh-add.
func buildSSHConfig(settings *sshSettings, opts Options) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	if len(opts.Signers) > 0 {
		authMethods = append(authMethods, ssh.PublicKeys(opts.Signers...))
	}

	tryKeyFile := func(keyPath string) {
		keyAuth, err := keyFileAuth(keyPath)
		if err != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(err, &encErr) {
				settings.encryptedKeys = append(settings.encryptedKeys, keyPath)
			}
			return
		}
		authMethods = append(authMethods, keyAuth)
	}

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	if key := os.Getenv(KeyEnv); key != "" {
		tryKeyFile(expandPath(key))
	}

	if settings.identityFile != "" {
		tryKeyFile(settings.identityFile)
	}

	for _, keyPath := range defaultKeyFiles() {
		if keyPath == settings.identityFile {
			continue
		}
		tryKeyFile(keyPath)
	}

	if len(authMethods) == 0 {
		msg := "No SSH auth methods available"
		suggestion := "Check your keys are loaded: ssh-add -l"
		if len(settings.encryptedKeys) > 0 {
			msg = fmt.Sprintf("Found SSH key(s) but they're encrypted: %s", strings.Join(settings.encryptedKeys, ", "))
			suggestion = addKeySuggestion("Add your key(s) to the agent:\n", settings.encryptedKeys)
		}
		return nil, errors.New(errors.ErrSSH, msg, suggestion)
	}

	hostKeyCallback := opts.HostKeyCallback
	if hostKeyCallback == nil {
		if opts.StrictHostKeyChecking {
			knownHostsPath := opts.KnownHostsPath
			if knownHostsPath == "" {
				knownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
			}
			var err error
			hostKeyCallback, err = createHostKeyCallback(knownHostsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load known_hosts: %w", err)
			}
		} else {
			hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // disabled in config
		}
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         opts.Timeout,
	}, nil
}

func defaultKeyFiles() []string {
	return []string{
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
}

// The agent connection is shared by every dial in the process.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns agent auth, or nil when there is no agent or it
// holds no keys. An empty agent placed first makes servers reject later
// methods.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}

	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the shared SSH agent connection.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth loads a private key file. Passphrase-protected keys return
// *EncryptedKeyError.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) ||
			strings.Contains(err.Error(), "encrypted") ||
			isEncryptedPEM(key) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

func addKeySuggestion(header string, keys []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			sb.WriteString(fmt.Sprintf("  ssh-add --apple-use-keychain %s\n", key))
		} else {
			sb.WriteString(fmt.Sprintf("  ssh-add %s\n", key))
		}
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Is SSH running on that box? Try: ssh <host>"
	case strings.Contains(errStr, "no route to host"), strings.Contains(errStr, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(errStr, "timeout"):
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		if len(encryptedKeys) > 0 {
			return addKeySuggestion("Your key(s) are encrypted. Add them to the agent:\n", encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	}
	if strings.Contains(errStr, "host key") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError reports a known_hosts entry that disagrees with the
// key the server presented.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns the commands that refresh known_hosts for the host.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	var wantTypes []string
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	wantStr := "unknown"
	if len(wantTypes) > 0 {
		wantStr = strings.Join(wantTypes, ", ")
	}

	return fmt.Sprintf(
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  To update known_hosts with all key types:\n"+
			"    ssh-keyscan -t rsa,ecdsa,ed25519 %s >> %s\n\n"+
			"  Or remove the old entry:\n"+
			"    ssh-keygen -R %s",
		wantStr, e.ReceivedType, host, e.KnownHosts, host)
}

// createHostKeyCallback loads known_hosts (creating an empty one if needed)
// and turns key mismatches into *HostKeyMismatchError.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err != nil && stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		return err
	}, nil
}
