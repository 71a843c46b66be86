// Package controller is the HTTP client for a hostdeck controller: the
// remote service that owns the true state of services, ports, firewall
// rules and host metrics.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
	"github.com/rileyhilliard/hostdeck/internal/telemetry"
)

// RequestIDHeader carries a per-request id so controller logs can be
// matched to client logs.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the controller API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	header     http.Header
	metrics    *telemetry.Metrics
	log        logger.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. with one whose
// transport dials through an SSH tunnel.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// WithMetrics records request latency.
func WithMetrics(m *telemetry.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Client for the controller at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid controller URL %q", baseURL),
			"Use a URL like http://host:8443")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Controller URL %q must use http or https", baseURL),
			"Use a URL like http://host:8443")
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		header:     http.Header{},
		log:        logger.NewEnvLogger("[controller]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the controller URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Header returns a copy of the static headers, for reuse on the stream
// handshake.
func (c *Client) Header() http.Header {
	return c.header.Clone()
}

// StreamURL maps the controller URL to the websocket URL for path.
func (c *Client) StreamURL(path string) string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// doRequest performs an HTTP request and decodes the JSON response into
// result. route is the templated path used as the latency label.
func (c *Client) doRequest(ctx context.Context, method, route, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.header {
		req.Header[k] = append([]string(nil), v...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, route, 0, time.Since(start))
		c.log.Debug("%s %s [%s] failed: %v", method, path, reqID, err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(method, route, resp.StatusCode, time.Since(start))
	c.log.Debug("%s %s [%s] -> %d", method, path, reqID, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, path, resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
		}
	}

	return nil
}

// HealthStatus is the /api/health response.
type HealthStatus struct {
	Status  string        `json:"status"`
	Latency time.Duration `json:"-"`
}

// Health checks that the controller is reachable and measures round trip
// latency.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	start := time.Now()
	if err := c.doRequest(ctx, http.MethodGet, "/api/health", "/api/health", nil, &h); err != nil {
		return nil, err
	}
	h.Latency = time.Since(start)
	return &h, nil
}

// ListServices returns all services in controller order.
func (c *Client) ListServices(ctx context.Context) ([]resource.Service, error) {
	var services []resource.Service
	if err := c.doRequest(ctx, http.MethodGet, "/api/services", "/api/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ServiceAction asks the controller to run action on the named service.
func (c *Client) ServiceAction(ctx context.Context, name string, action resource.Action) error {
	path := "/api/services/" + url.PathEscape(name) + "/action"
	body := map[string]string{"action": string(action)}
	return c.doRequest(ctx, http.MethodPost, "/api/services/{name}/action", path, body, nil)
}

// ListPorts returns all listening ports.
func (c *Client) ListPorts(ctx context.Context) ([]resource.Port, error) {
	var ports []resource.Port
	if err := c.doRequest(ctx, http.MethodGet, "/api/ports", "/api/ports", nil, &ports); err != nil {
		return nil, err
	}
	return ports, nil
}

// ListFirewallRules returns all firewall rules.
func (c *Client) ListFirewallRules(ctx context.Context) ([]resource.FirewallRule, error) {
	var rules []resource.FirewallRule
	if err := c.doRequest(ctx, http.MethodGet, "/api/firewall/rules", "/api/firewall/rules", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateFirewallRule adds a rule. Any 2xx is success and the response
// body is not read; the controller assigns the id, so callers re-list.
func (c *Client) CreateFirewallRule(ctx context.Context, req resource.FirewallRuleRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/api/firewall/rules", "/api/firewall/rules", req, nil)
}

// DeleteFirewallRule removes the rule with the given id.
func (c *Client) DeleteFirewallRule(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/firewall/rules/%d", id)
	return c.doRequest(ctx, http.MethodDelete, "/api/firewall/rules/{id}", path, nil, nil)
}

// SetFirewallEnabled turns the host firewall on or off. Rules are kept
// either way.
func (c *Client) SetFirewallEnabled(ctx context.Context, enabled bool) error {
	path := "/api/firewall/disable"
	if enabled {
		path = "/api/firewall/enable"
	}
	return c.doRequest(ctx, http.MethodPost, path, path, nil, nil)
}

// ListLogs returns log entries matching filter, oldest first.
func (c *Client) ListLogs(ctx context.Context, filter resource.LogFilter) ([]resource.LogEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	path := "/api/logs"
	if q := filter.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var entries []resource.LogEntry
	if err := c.doRequest(ctx, http.MethodGet, "/api/logs", path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LogStats returns the controller's log summary.
func (c *Client) LogStats(ctx context.Context) (*resource.LogSummary, error) {
	var summary resource.LogSummary
	if err := c.doRequest(ctx, http.MethodGet, "/api/logs/stats", "/api/logs/stats", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
