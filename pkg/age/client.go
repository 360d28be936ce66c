package age

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// CypherResult holds the raw agtype text of each returned row.
type CypherResult struct {
	Rows     []string
	RowCount int
}

// Session is the statement surface available inside and outside a
// transaction.
type Session interface {
	// ExecuteCypher runs one openCypher statement through ag_catalog.cypher().
	ExecuteCypher(ctx context.Context, query string) (*CypherResult, error)
	// Exec runs parameterized SQL (DDL, SET LOCAL, catalog writes).
	Exec(ctx context.Context, sql string, args ...any) error
	// Query runs parameterized SQL and returns every column of every row as text.
	// NULL columns come back as "".
	Query(ctx context.Context, sql string, args ...any) ([][]string, error)
}

// Gateway is a connection-scoped executor for one graph.
type Gateway interface {
	Session
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	GraphName() string
	// Transaction commits when fn returns nil and rolls back on error or
	// panic. The panic is re-raised after the rollback.
	Transaction(ctx context.Context, fn func(Session) error) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Client owns one pooled connection. It is not safe for concurrent use.
type Client struct {
	pool            *pgxpool.Pool
	graph           string
	delimiterLength int
	log             *slog.Logger

	conn *pgxpool.Conn
	tx   pgx.Tx
}

var _ Gateway = (*Client)(nil)

// GraphName returns the graph every cypher() call targets.
func (c *Client) GraphName() string {
	return c.graph
}

// IsConnected reports whether the client holds a connection.
func (c *Client) IsConnected() bool {
	return c.conn != nil
}

// Connect acquires a connection and makes sure the graph exists. Calling it
// on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	c.conn = conn

	if err := c.ensureGraph(ctx); err != nil {
		c.conn.Release()
		c.conn = nil
		return err
	}
	return nil
}

// Disconnect rolls back any open transaction and returns the connection to
// the pool.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	var err error
	if c.tx != nil {
		err = c.tx.Rollback(ctx)
		c.tx = nil
	}
	c.conn.Release()
	c.conn = nil
	return err
}

func (c *Client) ensureGraph(ctx context.Context) error {
	exists, err := c.graphExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := c.conn.Exec(ctx, "SELECT ag_catalog.create_graph($1)", c.graph); err != nil {
		// Another client may have created it between the lookup and the call.
		if exists, checkErr := c.graphExists(ctx); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create graph %s: %w", c.graph, err)
	}
	c.log.Info("created graph", slog.String("graph", c.graph))
	return nil
}

func (c *Client) graphExists(ctx context.Context) (bool, error) {
	var exists bool
	err := c.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM ag_catalog.ag_graph WHERE name = $1)", c.graph,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check graph %s: %w", c.graph, err)
	}
	return exists, nil
}

func (c *Client) querier() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

// ExecuteCypher wraps query with a fresh random delimiter and runs it. A
// failure inside a transaction rolls the transaction back.
func (c *Client) ExecuteCypher(ctx context.Context, query string) (*CypherResult, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	delimiter, err := newDelimiter(c.delimiterLength)
	if err != nil {
		return nil, err
	}
	stmt, err := wrapCypher(c.graph, delimiter, query)
	if err != nil {
		return nil, err
	}

	rows, err := c.querier().Query(ctx, stmt)
	if err != nil {
		return nil, c.fail(ctx, query, err)
	}
	defer rows.Close()

	result := &CypherResult{}
	for rows.Next() {
		var value pgtype.Text
		if err := rows.Scan(&value); err != nil {
			return nil, c.fail(ctx, query, err)
		}
		result.Rows = append(result.Rows, rowText(value))
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail(ctx, query, err)
	}
	result.RowCount = len(result.Rows)
	return result, nil
}

// rowText renders a SQL NULL cell as the agtype null literal.
func rowText(v pgtype.Text) string {
	if !v.Valid {
		return "null"
	}
	return v.String
}

func (c *Client) fail(ctx context.Context, query string, err error) error {
	c.rollback(ctx)
	return &QueryError{Query: query, Err: err}
}

// Exec runs parameterized SQL on the client's connection.
func (c *Client) Exec(ctx context.Context, sql string, args ...any) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	_, err := c.querier().Exec(ctx, sql, args...)
	return err
}

// Query runs parameterized SQL and collects every column as text.
func (c *Client) Query(ctx context.Context, sql string, args ...any) ([][]string, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	rows, err := c.querier().Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		values := make([]pgtype.Text, len(rows.FieldDescriptions()))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Transaction runs fn inside one database transaction on this client.
func (c *Client) Transaction(ctx context.Context, fn func(Session) error) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if c.tx != nil {
		return ErrNestedTransaction
	}

	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	c.tx = tx

	defer func() {
		if p := recover(); p != nil {
			c.rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(c); err != nil {
		c.rollback(ctx)
		return err
	}

	if c.tx == nil {
		return ErrTransactionAborted
	}
	c.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (c *Client) rollback(ctx context.Context) {
	if c.tx == nil {
		return
	}
	// The caller's context may already be cancelled; the rollback must still reach the server.
	if err := c.tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		c.log.Warn("transaction rollback failed", logger.Error(err))
	}
	c.tx = nil
}
