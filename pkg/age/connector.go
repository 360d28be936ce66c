package age

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/logger"
)

// Connector hands out clients bound to one graph. It is safe for concurrent
// use; the clients it returns are not.
type Connector struct {
	pool            *pgxpool.Pool
	graph           string
	delimiterLength int
	log             *slog.Logger
}

// NewConnector validates the graph name and returns a connector over pool.
func NewConnector(pool *pgxpool.Pool, graph string, delimiterLength int, log *slog.Logger) (*Connector, error) {
	if !IsSafeIdentifier(graph) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGraphName, graph)
	}
	if delimiterLength < 1 {
		delimiterLength = DefaultDelimiterLength
	}
	return &Connector{
		pool:            pool,
		graph:           graph,
		delimiterLength: delimiterLength,
		log:             log.With(logger.Scope("age"), slog.String("graph", graph)),
	}, nil
}

// ProvideConnector builds the connector from application config.
func ProvideConnector(pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) (*Connector, error) {
	return NewConnector(pool, cfg.Graph.Name, cfg.Graph.DelimiterLength, log)
}

// GraphName returns the configured graph.
func (c *Connector) GraphName() string {
	return c.graph
}

// NewClient returns an unconnected client.
func (c *Connector) NewClient() *Client {
	return &Client{
		pool:            c.pool,
		graph:           c.graph,
		delimiterLength: c.delimiterLength,
		log:             c.log,
	}
}

// Connect returns a connected client. The caller must Disconnect it.
func (c *Connector) Connect(ctx context.Context) (*Client, error) {
	client := c.NewClient()
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Opener produces connected gateways. *Connector implements it; tests
// substitute fakes.
type Opener interface {
	Open(ctx context.Context) (Gateway, error)
}

var _ Opener = (*Connector)(nil)

// Open is Connect behind the Gateway interface.
func (c *Connector) Open(ctx context.Context) (Gateway, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}
