package sshutil

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Tunnel forwards TCP connections through an SSH host. The SSH connection
// is opened on first use and re-opened once if it has died.
type Tunnel struct {
	host string
	opts Options

	mu     sync.Mutex
	client *Client
	closed bool

	// dial is swapped in tests.
	dial func(ctx context.Context, host string, opts Options) (*Client, error)
}

// NewTunnel returns a tunnel through host. No connection is made until the
// first DialContext.
func NewTunnel(host string, opts Options) *Tunnel {
	return &Tunnel{host: host, opts: opts, dial: Dial}
}

// Host returns the SSH host the tunnel goes through.
func (t *Tunnel) Host() string {
	return t.host
}

// DialContext opens addr from the SSH host's side. Its signature matches
// net.Dialer.DialContext so it plugs into http.Transport and
// websocket.Dialer.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	client, err := t.sshClient(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := client.DialContext(ctx, network, addr)
	if err == nil {
		return conn, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	// The SSH session may have dropped since the last dial; reconnect once.
	t.drop(client)
	client, cerr := t.sshClient(ctx)
	if cerr != nil {
		return nil, cerr
	}
	conn, err = client.DialContext(ctx, network, addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't reach %s through '%s'", addr, t.host),
			"Check the controller is listening on the SSH host")
	}
	return conn, nil
}

// Close tears down the SSH connection. Later dials fail.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func (t *Tunnel) sshClient(ctx context.Context) (*Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errors.New(errors.ErrSSH, "SSH tunnel is closed", "")
	}
	if t.client != nil {
		return t.client, nil
	}
	client, err := t.dial(ctx, t.host, t.opts)
	if err != nil {
		return nil, err
	}
	t.client = client
	return client, nil
}

func (t *Tunnel) drop(client *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == client {
		t.client = nil
	}
	_ = client.Close()
}
