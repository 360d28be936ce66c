package graphctl

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift-hyperfleet/kartograph-sub001/domain/mutations"
)

const batch = `{"op":"DEFINE","type":"node","label":"person","description":"A person","required_properties":["name"]}
{"op":"CREATE","type":"edge","id":"knows:00000000000000aa","label":"knows","start_id":"person:0123456789abcdef","end_id":"person:fedcba9876543210","set_properties":{"data_source_id":"ds-1","source_path":"a.md"}}
{"op":"CREATE","type":"node","id":"person:0123456789abcdef","label":"person","set_properties":{"slug":"alice","name":"Alice","data_source_id":"ds-1","source_path":"a.md"}}
{"op":"CREATE","type":"node","id":"person:fedcba9876543210","label":"person","set_properties":{"slug":"bob","name":"Bob","data_source_id":"ds-1","source_path":"b.md"}}
`

const types = `
types:
  - label: knows
    entity_type: edge
    description: Acquaintance
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"apply", "query", "indexes", "types", "version"})
}

func TestPlanBatch(t *testing.T) {
	ops, err := mutations.ParseBatch(strings.NewReader(batch))
	require.NoError(t, err)

	tests := []struct {
		name      string
		typesFile string
		success   bool
		failure   mutations.FailureKind
		stmts     int
	}{
		{name: "edge type seeded", typesFile: writeFile(t, "types.yaml", types), success: true, stmts: 3},
		{name: "edge type unknown", failure: mutations.FailureSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, plan, err := planBatch(context.Background(), ops, tt.typesFile, &options{})
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success, result.Errors)
			assert.Equal(t, tt.failure, result.Failure)
			require.Len(t, plan, tt.stmts)
			if tt.stmts > 0 {
				// nodes precede the edge that joins them
				assert.Contains(t, plan[0], ":person")
				assert.Contains(t, plan[2], ":knows")
			}
		})
	}
}

func TestPlanBatch_BadTypesFile(t *testing.T) {
	_, _, err := planBatch(context.Background(), nil, writeFile(t, "types.yaml", "types: ["), &options{})
	assert.ErrorContains(t, err, "parse seed file")
}

func TestApplyCommand_DryRun(t *testing.T) {
	batchPath := writeFile(t, "batch.jsonl", batch)
	typesPath := writeFile(t, "types.yaml", types)

	out, err := run(t, "apply", "--dry-run", "--types", typesPath, "-o", "json", batchPath)
	require.NoError(t, err)

	var result mutations.MutationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 4, result.OperationsApplied)
}

func TestApplyCommand_DryRunFailure(t *testing.T) {
	batchPath := writeFile(t, "batch.jsonl", batch)

	out, err := run(t, "apply", "--dry-run", batchPath)
	require.Error(t, err)
	assert.Contains(t, out, "is not defined")
}

func TestApplyCommand_ParseError(t *testing.T) {
	_, err := run(t, "apply", "--dry-run", writeFile(t, "batch.jsonl", "{not json}\n"))
	require.Error(t, err)
	assert.True(t, mutations.IsParseError(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestRowsTable(t *testing.T) {
	rows := []map[string]any{
		{"node": map[string]any{"id": 1}},
		{"value": "plain", "extra": 2},
	}

	header, lines := rowsTable(rows)
	assert.Equal(t, []string{"extra", "node", "value"}, header)
	assert.Equal(t, [][]string{
		{"", `{"id":1}`, ""},
		{"2", "", "plain"},
	}, lines)
}
