package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithDetail(code int, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

func NotFound(resource string) *Error {
	return New(http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

func MethodNotAllowed(method string) *Error {
	return New(http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

// From unwraps an *Error from err. Anything else becomes a 500 without
// leaking the underlying message.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error")
}

// Write encodes err as the JSON body with its code as the HTTP status.
func Write(w http.ResponseWriter, err *Error) {
	code := err.Code
	if http.StatusText(code) == "" {
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]*Error{"error": err})
}
