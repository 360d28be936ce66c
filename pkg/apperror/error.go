// Package apperror defines the error type HTTP handlers return and the echo
// handler that renders it as {"error": {"code", "message", "details"}}.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/pgutils"
)

// Error carries the HTTP status and a stable machine-readable code.
// Internal is logged but never rendered.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// WithInternal returns a copy with err attached.
func (e *Error) WithInternal(err error) *Error {
	c := *e
	c.Internal = err
	return &c
}

// WithMessage returns a copy with a different message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = details
	return &c
}

func (e *Error) body() map[string]any {
	body := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return body
}

func New(status int, code, message string) *Error {
	return &Error{HTTPStatus: status, Code: code, Message: message}
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation         = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")
	ErrNotFound           = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrRateLimited        = New(http.StatusTooManyRequests, "rate_limited", "Too many requests, retry later")
	ErrTimeout            = New(http.StatusGatewayTimeout, "timeout", "Database did not answer in time")
	ErrInternal           = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrDatabase           = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "service_unavailable", "Graph store is unavailable")
)

func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewValidation lists individual problems under details.errors.
func NewValidation(message string, problems []string) *Error {
	return ErrValidation.WithMessage(message).WithDetails(map[string]any{"errors": problems})
}

func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// FromDB maps a storage error to the response a client can act on:
// timeouts, a schema that was never migrated, an unreachable server, or a
// generic database failure.
func FromDB(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), pgutils.IsQueryCanceled(err):
		return ErrTimeout.WithInternal(err)
	case pgutils.IsUndefinedTable(err):
		return ErrServiceUnavailable.WithMessage("Graph schema is not migrated").WithInternal(err)
	case pgutils.IsConnectionFailure(err):
		return ErrServiceUnavailable.WithInternal(err)
	default:
		return ErrDatabase.WithInternal(err)
	}
}
