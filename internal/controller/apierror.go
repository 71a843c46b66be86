package controller

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches any APIError with status 404 under errors.Is.
var ErrNotFound = stderrors.New("not found")

// APIError is a non-2xx controller response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the controller's error text, or the HTTP status text if
	// the body carried none.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// errorBody covers both error shapes a controller sends:
// {"error": "..."} and {"success": false, "message": "...", "error": "..."}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Error != "":
			e.Message = eb.Error
		case eb.Message != "":
			e.Message = eb.Message
		}
	}
	if e.Message == "" {
		if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 512 {
			e.Message = text
		} else {
			e.Message = http.StatusText(status)
		}
	}
	return e
}

// IsNotFound reports whether err is, or wraps, a 404 from the controller.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status of an APIError anywhere in the chain,
// or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
