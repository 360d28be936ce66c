package age

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by every client operation before Connect
	// or after Disconnect.
	ErrNotConnected = errors.New("age: client is not connected")

	// ErrInsecureQuery is returned when the query text contains the random
	// delimiter chosen for it. The query is never sent.
	ErrInsecureQuery = errors.New("age: query text contains the statement delimiter")

	// ErrNestedTransaction is returned by Transaction while another
	// transaction is open on the same client.
	ErrNestedTransaction = errors.New("age: nested transactions are not supported")

	// ErrTransactionAborted is returned when fn reports success but a failed
	// statement already rolled the transaction back.
	ErrTransactionAborted = errors.New("age: transaction was rolled back by a failed statement")

	// ErrInvalidGraphName rejects graph names outside the safe identifier set.
	ErrInvalidGraphName = errors.New("age: invalid graph name")
)

// QueryError reports a cypher statement the engine rejected.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("cypher query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
