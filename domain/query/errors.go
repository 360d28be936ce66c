package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/pgutils"
)

// ErrorType classifies a failed read query so callers can decide whether to
// retry, rewrite the query or surface the failure.
type ErrorType string

const (
	ErrorForbidden ErrorType = "forbidden"
	ErrorTimeout   ErrorType = "timeout"
	ErrorExecution ErrorType = "execution_error"
	ErrorUnknown   ErrorType = "unknown_error"
)

// Error is returned for every failed read query. Query is the text as the
// caller submitted it.
type Error struct {
	Type    ErrorType `json:"error_type"`
	Message string    `json:"message"`
	Query   string    `json:"query"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func forbidden(query, keyword string) *Error {
	return &Error{
		Type:    ErrorForbidden,
		Message: fmt.Sprintf("query is not read-only: %s is not allowed", keyword),
		Query:   query,
	}
}

// classify maps an execution failure onto an *Error.
func classify(query string, timeoutSeconds int, err error) *Error {
	var qe *Error
	if errors.As(err, &qe) {
		return qe
	}

	out := &Error{Query: query, Err: err}
	var cypherErr *age.QueryError
	switch {
	case pgutils.IsQueryCanceled(err), errors.Is(err, context.DeadlineExceeded):
		out.Type = ErrorTimeout
		out.Message = fmt.Sprintf("query exceeded the %ds timeout", timeoutSeconds)
	case pgutils.IsReadOnlyViolation(err):
		out.Type = ErrorForbidden
		out.Message = "query attempted to write in a read-only transaction"
	case errors.Is(err, age.ErrInsecureQuery):
		out.Type = ErrorForbidden
		out.Message = "query text contains a reserved delimiter"
	case errors.As(err, &cypherErr):
		out.Type = ErrorExecution
		out.Message = cypherErr.Err.Error()
	case pgutils.Code(err) != "":
		out.Type = ErrorExecution
		out.Message = err.Error()
	default:
		out.Type = ErrorUnknown
		out.Message = err.Error()
	}
	return out
}
