package controller

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/collection"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/logger"
	"github.com/rileyhilliard/hostdeck/internal/resource"
)

func TestServiceBackend_Apply(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{}`)
	})

	b := c.Services()
	require.NoError(t, b.Apply(context.Background(), resource.ServiceAction("nginx", resource.ActionRestart)))
	assert.Equal(t, []string{"POST /api/services/nginx/action"}, calls)

	err := b.Apply(context.Background(), resource.DeleteRule(1))
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
	assert.Len(t, calls, 1, "mismatched kinds never reach the controller")
}

func TestPortBackend_ReadOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	err := c.Ports().Apply(context.Background(), resource.ActionRequest{Kind: resource.KindPort, Action: resource.ActionStop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestFirewallBackend_Apply(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"rule not found"}`)
			return
		}
		// Original-style OperationResult body instead of the created rule.
		_, _ = io.WriteString(w, `{"success":true,"message":"rule added"}`)
	})

	b := c.Firewall()
	require.NoError(t, b.Apply(context.Background(), resource.CreateRule(resource.DefaultRuleRequest())))

	err := b.Apply(context.Background(), resource.DeleteRule(12))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	assert.Equal(t, []string{"POST /api/firewall/rules", "DELETE /api/firewall/rules/12"}, calls)
}

func TestFirewallBackend_CreateIgnoresResponseBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "plain string", status: http.StatusCreated, body: `"created"`},
		{name: "text body", status: http.StatusCreated, body: `rule added`},
		{name: "array", status: http.StatusOK, body: `[1,2,3]`},
		{name: "no content", status: http.StatusNoContent, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			lists := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					w.WriteHeader(tt.status)
					_, _ = io.WriteString(w, tt.body)
					return
				}
				mu.Lock()
				lists++
				mu.Unlock()
				_, _ = io.WriteString(w, `[{"id":1,"action":"allow","protocol":"tcp","port":80,"source":"","description":"","enabled":true}]`)
			})

			coll := collection.New[resource.FirewallRule](resource.KindFirewallRule, c.Firewall(), collection.WithLogger(logger.Noop()))
			defer coll.Close()

			require.NoError(t, coll.Mutate(context.Background(), resource.CreateRule(resource.DefaultRuleRequest())))
			assert.Len(t, coll.Items(), 1, "the write is followed by a re-list")
			mu.Lock()
			assert.Equal(t, 1, lists)
			mu.Unlock()
		})
	}
}

func TestFirewallBackend_Toggle(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"Firewall enabled"}`)
	})

	b := c.Firewall()
	require.NoError(t, b.Apply(context.Background(), resource.SetFirewall(true)))
	require.NoError(t, b.Apply(context.Background(), resource.SetFirewall(false)))
	assert.Equal(t, []string{"POST /api/firewall/enable", "POST /api/firewall/disable"}, calls)
}
