// Package pgutils classifies PostgreSQL errors by SQLSTATE.
package pgutils

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the graph components react to.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	CodeUniqueViolation        = "23505"
	CodeReadOnlySQLTransaction = "25006"
	CodeSyntaxError            = "42601"
	CodeUndefinedTable         = "42P01"
	CodeDuplicateObject        = "42710"
	CodeQueryCanceled          = "57014"

	// classConnection prefixes every connection exception (08000, 08006, ...).
	classConnection = "08"
)

// Code returns the SQLSTATE carried by err, or "" when err is not a
// PostgreSQL error.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

// IsQueryCanceled reports a statement cancelled by statement_timeout or a
// cancel request.
func IsQueryCanceled(err error) bool {
	return hasCode(err, CodeQueryCanceled)
}

// IsReadOnlyViolation reports a write attempted inside a READ ONLY transaction.
func IsReadOnlyViolation(err error) bool {
	return hasCode(err, CodeReadOnlySQLTransaction)
}

// IsUndefinedTable reports a missing relation, typically an unmigrated schema.
func IsUndefinedTable(err error) bool {
	return hasCode(err, CodeUndefinedTable)
}

// IsDuplicateObject reports an object that already exists.
func IsDuplicateObject(err error) bool {
	return hasCode(err, CodeDuplicateObject)
}

// IsConnectionFailure reports a lost or refused connection: SQLSTATE class
// 08 or a pgconn dial failure.
func IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return strings.HasPrefix(Code(err), classConnection)
}

// hasCode matches a typed *pgconn.PgError first and falls back to the error
// text for drivers that only surface the code in the message.
func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if c := Code(err); c != "" {
		return c == code
	}
	return strings.Contains(err.Error(), code)
}
