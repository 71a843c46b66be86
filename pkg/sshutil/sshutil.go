// Package sshutil dials SSH hosts the way the OpenSSH client would (aliases
// from ~/.ssh/config, agent and default keys, known_hosts) and exposes the
// connection as a tunnel for TCP traffic to the controller.
package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Options controls how a host is dialed.
type Options struct {
	// Timeout bounds the TCP connect and SSH handshake.
	Timeout time.Duration
	// StrictHostKeyChecking verifies host keys against known_hosts. When
	// false, host keys are not checked at all.
	StrictHostKeyChecking bool
	// ConfigPath overrides ~/.ssh/config.
	ConfigPath string
	// KnownHostsPath overrides ~/.ssh/known_hosts.
	KnownHostsPath string
	// Signers are tried before the agent and key files.
	Signers []ssh.Signer
	// HostKeyCallback replaces known_hosts verification entirely.
	HostKeyCallback ssh.HostKeyCallback
}

// DefaultOptions returns strict options with a 10s timeout.
func DefaultOptions() Options {
	return Options{
		Timeout:               10 * time.Second,
		StrictHostKeyChecking: true,
	}
}

// WarningHandler receives non-fatal warnings. If nil, warnings go to
// log.Printf.
var WarningHandler func(message string)

func emitWarning(message string) {
	if WarningHandler != nil {
		WarningHandler(message)
	} else {
		log.Printf("Warning: %s", message)
	}
}

// Client wraps an SSH connection with the host it was dialed as.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)
}

// Dial establishes an SSH connection to host, which may be an SSH config
// alias, a hostname, user@hostname, or hostname:port.
func Dial(ctx context.Context, host string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	settings := resolveSSHSettings(host, opts.ConfigPath)

	config, err := buildSSHConfig(settings, opts)
	if err != nil {
		var hdErr *errors.Error
		if stderrors.As(err, &hdErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(opts.Timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// Alive sends a keepalive request and reports whether the server answered.
func (c *Client) Alive() bool {
	_, _, err := c.Client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}
