package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostdeck/internal/collection"
	"github.com/rileyhilliard/hostdeck/internal/controller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]string{"status": "ok"}))

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, true, env["success"])
	assert.Equal(t, map[string]interface{}{"status": "ok"}, env["data"])
	assert.NotContains(t, env, "error")
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONError(&buf, ErrCodeBusy, "busy", "wait", nil))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeBusy, env.Error.Code)
	assert.Equal(t, "wait", env.Error.Suggestion)
}

func TestErrorToJSON(t *testing.T) {
	notFound := &controller.APIError{Method: "DELETE", Path: "/api/firewall/rules/9", StatusCode: 404, Message: "firewall rule not found"}
	serverErr := &controller.APIError{Method: "GET", Path: "/api/services", StatusCode: 500, Message: "boom"}
	refused := &controller.TransportError{Method: "GET", Path: "/api/ports", Err: fmt.Errorf("connection refused")}

	tests := []struct {
		name    string
		err     error
		code    string
		details interface{}
	}{
		{"plain error", stderrors.New("oops"), ErrCodeUnknown, nil},
		{"config not found", errors.New(errors.ErrConfig, "Config file not found", ""), ErrCodeConfigNotFound, nil},
		{"config invalid", errors.New(errors.ErrConfig, "controller.url is required", ""), ErrCodeConfigInvalid, nil},
		{"busy", errors.New(errors.ErrBusy, "in flight", ""), ErrCodeBusy, nil},
		{"closed collection", collection.ErrClosed, ErrCodeClosed, nil},
		{"cancelled", errors.New(errors.ErrWorkflow, "Action cancelled", ""), ErrCodeCancelled, nil},
		{"invalid", errors.New(errors.ErrInvalid, "bad port", ""), ErrCodeInvalidRequest, nil},
		{"stream", errors.New(errors.ErrStream, "no stats", ""), ErrCodeStreamFailed, nil},
		{"mutation 404", errors.WrapWithCode(notFound, errors.ErrMutation, "Failed to delete", ""), ErrCodeNotFound, map[string]int{"status": 404}},
		{"fetch 500", errors.WrapWithCode(serverErr, errors.ErrFetch, "Failed to list", ""), ErrCodeFetchFailed, map[string]int{"status": 500}},
		{"fetch unreachable", errors.WrapWithCode(refused, errors.ErrFetch, "Failed to list", ""), ErrCodeControllerDown, nil},
		{"unwrapped api error", serverErr, ErrCodeUnknown, map[string]int{"status": 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.details, got.Details)
		})
	}

	assert.Nil(t, ErrorToJSON(nil))
}
