// SPDX-License-Identifier: MIT

// Package apperr is the error taxonomy shared by every occam component.
// Each failure carries one of the sentinel kinds below plus a stable,
// user-facing message; the HTTP layer maps kinds to status codes and
// renders messages verbatim in the error envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for errors.Is checks at the boundary.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrExternalAPI  = errors.New("external api failure")
	ErrCache        = errors.New("cache failure")
	ErrDatabase     = errors.New("database failure")
	ErrOptimization = errors.New("optimization failure")
	ErrInternal     = errors.New("internal error")
)

// Error couples a sentinel kind with the message clients see and an
// optional lower-level cause kept for logs.
type Error struct {
	Sentinel error
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// New builds a taxonomy error with a fixed message.
func New(sentinel error, message string) error {
	return &Error{Sentinel: sentinel, Message: message}
}

// Newf builds a taxonomy error with a formatted message.
func Newf(sentinel error, format string, args ...any) error {
	return &Error{Sentinel: sentinel, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause. The message stays user-facing; the cause shows up
// in Error() and therefore in logs, never in API responses.
func Wrap(sentinel error, message string, err error) error {
	return &Error{Sentinel: sentinel, Message: message, Err: err}
}

// UserMessage extracts the stable client-facing message, falling back to a
// generic one for errors from outside the taxonomy.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error to its response status. Unclassified errors are
// internal by definition.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExternalAPI):
		return http.StatusBadGateway
	case errors.Is(err, ErrOptimization):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrCache), errors.Is(err, ErrDatabase), errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
