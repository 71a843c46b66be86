// Package transport builds the HTTP client and websocket dialer used to talk
// to the controller, optionally routed through an SSH tunnel.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/hostdeck/internal/config"
	"github.com/rileyhilliard/hostdeck/pkg/sshutil"
)

// Options configures a Transport.
type Options struct {
	// Timeout bounds each HTTP request. Zero means no limit.
	Timeout time.Duration
	// HandshakeTimeout bounds the websocket upgrade.
	HandshakeTimeout time.Duration
	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool
	// SSHHost routes all connections through this SSH host when set.
	SSHHost string
	// SSH controls the tunnel's SSH connection.
	SSH sshutil.Options
}

// FromConfig maps the controller and stream sections onto Options.
func FromConfig(cfg *config.Config) Options {
	ssh := sshutil.DefaultOptions()
	ssh.StrictHostKeyChecking = cfg.Controller.StrictHostKeyChecking
	ssh.Timeout = cfg.Controller.Timeout

	return Options{
		Timeout:            cfg.Controller.Timeout,
		HandshakeTimeout:   cfg.Stream.HandshakeTimeout,
		InsecureSkipVerify: cfg.Controller.InsecureSkipVerify,
		SSHHost:            cfg.Controller.SSH,
		SSH:                ssh,
	}
}

// Transport shares one dial path between the HTTP client and the websocket
// dialer.
type Transport struct {
	opts   Options
	tunnel *sshutil.Tunnel
	tls    *tls.Config
}

// New creates a Transport. The SSH tunnel, if any, connects lazily.
func New(opts Options) *Transport {
	t := &Transport{opts: opts}
	if opts.InsecureSkipVerify {
		t.tls = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opted in via controller.insecure_skip_verify
	}
	if opts.SSHHost != "" {
		t.tunnel = sshutil.NewTunnel(opts.SSHHost, opts.SSH)
	}
	return t
}

// Tunneled reports whether connections go through SSH.
func (t *Transport) Tunneled() bool {
	return t.tunnel != nil
}

// DialContext opens a TCP connection to addr, through the tunnel if set.
func (t *Transport) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if t.tunnel != nil {
		return t.tunnel.DialContext(ctx, network, addr)
	}
	d := net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return d.DialContext(ctx, network, addr)
}

// HTTPClient returns a client for the controller's REST endpoints.
func (t *Transport) HTTPClient() *http.Client {
	rt := &http.Transport{
		DialContext:           t.DialContext,
		TLSClientConfig:       t.tls,
		ForceAttemptHTTP2:     t.tunnel == nil,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	// Proxies don't apply once traffic leaves from the SSH host.
	if t.tunnel == nil {
		rt.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{Transport: rt, Timeout: t.opts.Timeout}
}

// WebsocketDialer returns a dialer for the stats stream.
func (t *Transport) WebsocketDialer() *websocket.Dialer {
	d := &websocket.Dialer{
		NetDialContext:   t.DialContext,
		HandshakeTimeout: t.opts.HandshakeTimeout,
		TLSClientConfig:  t.tls,
	}
	if t.tunnel == nil {
		d.Proxy = http.ProxyFromEnvironment
	}
	return d
}

// Close shuts the SSH tunnel down, if there is one.
func (t *Transport) Close() error {
	if t.tunnel == nil {
		return nil
	}
	return t.tunnel.Close()
}
