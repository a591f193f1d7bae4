// Package apierror defines the errors returned by the HTTP API.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
	"github.com/nnnkkk7/sqlbuddy/pkg/connector"
	"github.com/nnnkkk7/sqlbuddy/pkg/query"
)

// Error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeRunNotFound      = "RUN_NOT_FOUND"
	CodeRunFinished      = "RUN_FINISHED"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeConnectionBusy   = "CONNECTION_BUSY"
	CodeInternalError    = "INTERNAL"
)

// StatusCode returns the HTTP status for a given error code.
func StatusCode(code string) int {
	mapping := map[string]int{
		CodeInvalidRequest:   http.StatusBadRequest,
		CodeRunNotFound:      http.StatusNotFound,
		CodeRunFinished:      http.StatusConflict,
		CodeConnectionFailed: http.StatusBadGateway,
		CodeConnectionBusy:   http.StatusServiceUnavailable,
	}

	if status, ok := mapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is an API error.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithData adds data to the error.
func (e *Error) WithData(key string, value any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// Is checks if this error matches another error by code.
func (e *Error) Is(target error) bool {
	var apiErr *Error
	if errors.As(target, &apiErr) {
		return e.Code == apiErr.Code
	}
	return false
}

// StatusCode returns the HTTP status of the error.
func (e *Error) StatusCode() int {
	return StatusCode(e.Code)
}

// ErrorResponse represents the JSON response structure for errors.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Data    map[string]any `json:"data,omitempty"`
}

// ToResponse converts the Error to an ErrorResponse.
func (e *Error) ToResponse() *ErrorResponse {
	var data map[string]any
	if len(e.Data) > 0 {
		data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			data[k] = v
		}
	}

	return &ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
		Data:    data,
	}
}

// Write sends the error as JSON with its HTTP status.
func (e *Error) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	_ = json.NewEncoder(w).Encode(e.ToResponse())
}

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return New(CodeInvalidRequest, message)
}

// NewRunNotFoundError creates a run not found error.
func NewRunNotFoundError(handle string) *Error {
	return New(CodeRunNotFound, fmt.Sprintf("Run not found: %s", handle)).WithData("handle", handle)
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *Error {
	return New(CodeInternalError, message)
}

// FromError converts an error to an Error, choosing the code from known
// sentinel and typed errors. If the error is nil, it returns nil.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var connErr *connector.ConnectionError
	switch {
	case errors.As(err, &connErr):
		return New(CodeConnectionFailed, err.Error()).WithData("type", connErr.Type)
	case errors.Is(err, connection.ErrBusy):
		return New(CodeConnectionBusy, err.Error())
	case errors.Is(err, query.ErrRunNotFound):
		return New(CodeRunNotFound, err.Error())
	case errors.Is(err, query.ErrRunFinished):
		return New(CodeRunFinished, err.Error())
	default:
		return New(CodeInternalError, err.Error())
	}
}
