package typedefs_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
	"github.com/openshift-hyperfleet/kartograph-sub001/domain/typedefs"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/testutil"
)

func uniqueLabel() string {
	return "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func TestBunRepository_UpsertAndLearn(t *testing.T) {
	db := testutil.SetupAGE(t)
	repo := typedefs.NewBunRepository(db.DB)
	svc := typedefs.NewService(repo, slog.Default())
	ctx := context.Background()
	label := uniqueLabel()

	got, err := repo.Get(ctx, label, mutations.EntityNode)
	require.NoError(t, err)
	assert.Nil(t, got)

	define := &mutations.DefineOperation{
		EntityType:         mutations.EntityNode,
		Label:              label,
		Description:        "first",
		RequiredProperties: []string{"name"},
		OptionalProperties: []string{"email"},
	}
	require.NoError(t, svc.SaveDefinitions(ctx, []*mutations.DefineOperation{define}))

	first, err := repo.Get(ctx, label, mutations.EntityNode)
	require.NoError(t, err)
	require.NotNil(t, first)

	define.Description = "second"
	define.OptionalProperties = []string{"age"}
	require.NoError(t, svc.SaveDefinitions(ctx, []*mutations.DefineOperation{define}))

	props := mutations.NewProperties("data_source_id", "d", "source_path", "p", "slug", "s", "name", "n", "nickname", "x")
	require.NoError(t, svc.Learn(ctx, []mutations.Operation{
		&mutations.CreateNodeOperation{ID: "person:0123456789abcdef", Label: label, SetProperties: props},
	}))

	second, err := repo.Get(ctx, label, mutations.EntityNode)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second", second.Description)
	assert.Equal(t, []string{"age", "email", "nickname"}, []string(second.OptionalProperties))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	var found bool
	for _, def := range all {
		found = found || def.Label == label
	}
	assert.True(t, found)
}
