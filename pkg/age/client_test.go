package age

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnector_RejectsUnsafeGraphName(t *testing.T) {
	for _, name := range []string{"", "graph-name", "g'); DROP SCHEMA x; --", "1graph"} {
		_, err := NewConnector(nil, name, 64, slog.Default())
		assert.ErrorIs(t, err, ErrInvalidGraphName, name)
	}
}

func TestNewConnector_DefaultDelimiterLength(t *testing.T) {
	c, err := NewConnector(nil, "kartograph_graph", 0, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, DefaultDelimiterLength, c.NewClient().delimiterLength)
	assert.Equal(t, "kartograph_graph", c.GraphName())
}

func TestClient_NotConnected(t *testing.T) {
	c, err := NewConnector(nil, "kartograph_graph", 64, slog.Default())
	require.NoError(t, err)
	client := c.NewClient()
	ctx := context.Background()

	assert.False(t, client.IsConnected())

	_, err = client.ExecuteCypher(ctx, "RETURN 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.ErrorIs(t, client.Exec(ctx, "SELECT 1"), ErrNotConnected)

	_, err = client.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	err = client.Transaction(ctx, func(Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.NoError(t, client.Disconnect(ctx), "disconnecting an unconnected client is a no-op")
}

func TestQueryError(t *testing.T) {
	cause := assert.AnError
	err := error(&QueryError{Query: "MATCH (n) RETURN n", Err: cause})

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "MATCH (n) RETURN n", qe.Query)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cypher query failed")
}

func TestRowText(t *testing.T) {
	assert.Equal(t, "null", rowText(pgtype.Text{}))
	assert.Equal(t, `"Ada"`, rowText(pgtype.Text{String: `"Ada"`, Valid: true}))
	assert.Equal(t, "", rowText(pgtype.Text{String: "", Valid: true}))
}
