package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Controller.SSH = "gateway"
	cfg.Controller.StrictHostKeyChecking = false
	cfg.Controller.InsecureSkipVerify = true
	cfg.Controller.Timeout = 4 * time.Second
	cfg.Stream.HandshakeTimeout = 3 * time.Second

	opts := FromConfig(cfg)
	assert.Equal(t, "gateway", opts.SSHHost)
	assert.False(t, opts.SSH.StrictHostKeyChecking)
	assert.Equal(t, 4*time.Second, opts.SSH.Timeout)
	assert.Equal(t, 4*time.Second, opts.Timeout)
	assert.Equal(t, 3*time.Second, opts.HandshakeTimeout)
	assert.True(t, opts.InsecureSkipVerify)

	tr := New(opts)
	assert.True(t, tr.Tunneled())
	assert.Nil(t, tr.WebsocketDialer().Proxy, "no proxy through the tunnel")
	assert.NoError(t, tr.Close())
}

func TestHTTPClient_TLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		insecure bool
		wantErr  bool
	}{
		{name: "self-signed rejected by default", insecure: false, wantErr: true},
		{name: "self-signed accepted when insecure", insecure: true, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(Options{Timeout: 5 * time.Second, InsecureSkipVerify: tt.insecure})
			defer tr.Close()
			assert.False(t, tr.Tunneled())

			client := tr.HTTPClient()
			assert.Equal(t, 5*time.Second, client.Timeout)

			resp, err := client.Get(srv.URL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "ok", string(body))
		})
	}
}

func TestWebsocketDialer_Connects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"hello":"world"}`))
	}))
	defer srv.Close()

	tr := New(Options{HandshakeTimeout: 2 * time.Second, InsecureSkipVerify: true})
	d := tr.WebsocketDialer()
	assert.Equal(t, 2*time.Second, d.HandshakeTimeout)
	assert.NotNil(t, d.Proxy)

	wsURL := "wss" + strings.TrimPrefix(srv.URL, "https")
	conn, _, err := d.DialContext(context.Background(), wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(msg))
}
