package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/hostdeck/internal/controller"
	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeSSHFailed      = "SSH_FAILED"
	ErrCodeControllerDown = "CONTROLLER_UNREACHABLE"
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeMutationFailed = "MUTATION_FAILED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeStreamFailed   = "STREAM_FAILED"
	ErrCodeBusy           = "BUSY"
	ErrCodeClosed         = "CLOSED"
	ErrCodeCancelled      = "CANCELLED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUnknownCommand = "UNKNOWN_COMMAND"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
// Controller responses anywhere in the chain add their HTTP status as a detail.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var details interface{}
	if status := controller.StatusCode(err); status != 0 {
		details = map[string]int{"status": status}
	}

	var hdErr *errors.Error
	if stderrors.As(err, &hdErr) {
		code := mapErrorCode(hdErr.Code, hdErr.Message)
		var transportErr *controller.TransportError
		switch {
		case controller.IsNotFound(err):
			code = ErrCodeNotFound
		case stderrors.As(err, &transportErr):
			code = ErrCodeControllerDown
		}
		return &JSONError{
			Code:       code,
			Message:    hdErr.Message,
			Suggestion: hdErr.Suggestion,
			Details:    details,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
		Details: details,
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSSH:
		return ErrCodeSSHFailed
	case errors.ErrTransport:
		return ErrCodeControllerDown
	case errors.ErrFetch:
		return ErrCodeFetchFailed
	case errors.ErrMutation:
		return ErrCodeMutationFailed
	case errors.ErrStream:
		return ErrCodeStreamFailed
	case errors.ErrBusy:
		return ErrCodeBusy
	case errors.ErrClosed:
		return ErrCodeClosed
	case errors.ErrWorkflow:
		return ErrCodeCancelled
	case errors.ErrInvalid:
		return ErrCodeInvalidRequest
	}
	return ErrCodeUnknown
}
