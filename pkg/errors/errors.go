package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrAmbiguous          = New("AMBIGUOUS_MATCH", http.StatusConflict, "multiple events match")
	ErrUnknownIntent      = New("UNKNOWN_INTENT", http.StatusUnprocessableEntity, "unknown intent")
	ErrInvalidResponse    = New("INVALID_RESPONSE", http.StatusUnprocessableEntity, "invalid response format")
	ErrUpstream           = New("UPSTREAM_ERROR", http.StatusBadGateway, "upstream request failed")
	ErrUpstreamDown       = New("UPSTREAM_UNAVAILABLE", http.StatusServiceUnavailable, "upstream unavailable")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Validation builds a validation error with the given message.
func Validation(message string) *Error {
	return Clone(ErrValidation, message)
}

// Ambiguous reports how many candidates matched so callers can ask for disambiguation.
func Ambiguous(message string, count int) *Error {
	e := Clone(ErrAmbiguous, message)
	e.Details = map[string]int{"count": count}
	return e
}

// Upstream builds an upstream error carrying the provider status and body.
func Upstream(status int, body string) *Error {
	e := Clone(ErrUpstream, fmt.Sprintf("upstream error (status %d)", status))
	e.Details = map[string]interface{}{"upstream_status": status, "body": body}
	return e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
