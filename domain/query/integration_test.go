package query_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/query"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/testutil"
	"github.com/openshift-hyperfleet/kartograph-sub001/pkg/age"
)

func setup(t *testing.T) (*query.Service, *age.Connector) {
	t.Helper()
	db := testutil.SetupAGE(t)
	connector, err := age.NewConnector(db.Pool, db.UniqueGraph(t), age.DefaultDelimiterLength, slog.Default())
	require.NoError(t, err)

	ctx := context.Background()
	client, err := connector.Connect(ctx)
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	for _, id := range []string{"a", "b", "c"} {
		_, err := client.ExecuteCypher(ctx, "CREATE (:Test {id: '"+id+"'})")
		require.NoError(t, err)
	}

	return query.NewService(connector, query.DefaultLimits, slog.Default()), connector
}

func TestExecute_RowLimit(t *testing.T) {
	svc, _ := setup(t)

	rows, err := svc.Execute(context.Background(), "MATCH (n:Test) RETURN n", query.Options{MaxRows: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	node, ok := rows[0]["node"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Test", node["label"])
}

func TestExecute_ExplicitLimitKept(t *testing.T) {
	svc, _ := setup(t)

	rows, err := svc.Execute(context.Background(), "MATCH (n:Test) RETURN n.id ORDER BY n.id LIMIT 3", query.Options{MaxRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"value": "a"}, {"value": "b"}, {"value": "c"}}, rows)
}

func TestExecute_NullCells(t *testing.T) {
	svc, _ := setup(t)

	rows, err := svc.Execute(context.Background(), "MATCH (n:Test {id: 'a'}) RETURN n.missing", query.Options{})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"value": nil}}, rows)
}

func TestExecute_TrailingCommentStillBounded(t *testing.T) {
	svc, _ := setup(t)

	rows, err := svc.Execute(context.Background(), "MATCH (n:Test) WHERE n.id <> 'LIMIT 9' RETURN n // every node", query.Options{MaxRows: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExecute_Forbidden(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Execute(context.Background(), "CREATE (n:Test)", query.Options{})

	var qe *query.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, query.ErrorForbidden, qe.Type)
	assert.Contains(t, qe.Message, "CREATE")
}

func TestExecute_MapRow(t *testing.T) {
	svc, _ := setup(t)

	rows, err := svc.Execute(context.Background(), "MATCH (n:Test {id: 'a'}) RETURN {who: n, k: 1}", query.Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["k"])
	who, ok := rows[0]["who"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Test", who["label"])
}

func TestExecute_Timeout(t *testing.T) {
	svc, _ := setup(t)

	// A cross product large enough to outlive a one second statement timeout.
	_, err := svc.Execute(context.Background(),
		"UNWIND range(1, 100000) AS a UNWIND range(1, 100000) AS b RETURN count(*)",
		query.Options{TimeoutSeconds: 1})

	var qe *query.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, query.ErrorTimeout, qe.Type)
}

func TestExecute_SyntaxError(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Execute(context.Background(), "MATCH (n RETURN n", query.Options{})

	var qe *query.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, query.ErrorExecution, qe.Type)
	assert.Equal(t, "MATCH (n RETURN n", qe.Query)
}
