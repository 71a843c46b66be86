package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceStatus_Unmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want ServiceStatus
	}{
		{raw: `"active"`, want: ServiceActive},
		{raw: `"inactive"`, want: ServiceInactive},
		{raw: `"failed"`, want: ServiceFailed},
		{raw: `"unknown"`, want: ServiceUnknown},
		{raw: `"activating"`, want: ServiceUnknown},
		{raw: `""`, want: ServiceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s ServiceStatus
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestService_Decode(t *testing.T) {
	raw := `[{"name":"nginx","displayName":"Web server","status":"inactive","port":80,"description":"HTTP","autoStart":true},
	         {"name":"cron","status":"active","description":"","autoStart":false}]`

	var services []Service
	require.NoError(t, json.Unmarshal([]byte(raw), &services))
	require.Len(t, services, 2)

	assert.Equal(t, "nginx", services[0].Name)
	assert.Equal(t, ServiceInactive, services[0].Status)
	assert.Equal(t, 80, services[0].Port)
	assert.True(t, services[0].AutoStart)
	assert.Equal(t, "Web server", services[0].Label())

	assert.Zero(t, services[1].Port)
	assert.Equal(t, "cron", services[1].Label())
}

func TestPort_Key(t *testing.T) {
	p := Port{Number: 443, Protocol: ProtocolTCP}
	assert.Equal(t, "443/tcp", p.Key())

	q := Port{Number: 443, Protocol: ProtocolUDP}
	assert.NotEqual(t, p.Key(), q.Key(), "same number on different protocols is a different port")
}
