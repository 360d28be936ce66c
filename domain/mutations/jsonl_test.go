package mutations

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBatch = `{"op":"DEFINE","type":"node","label":"person","description":"A person","required_properties":["slug","name"],"optional_properties":[]}

{"op":"CREATE","type":"node","id":"person:abc123def456789a","label":"person","set_properties":{"slug":"alice","name":"Alice","data_source_id":"ds-1","source_path":"a.md"}}
{"op":"CREATE","type":"edge","id":"knows:abc123def456789b","label":"knows","start_id":"person:abc123def456789a","end_id":"person:abc123def456789c","set_properties":{"data_source_id":"ds-1","source_path":"a.md","since":2020}}
{"op":"UPDATE","type":"node","id":"person:abc123def456789a","set_properties":{"name":"Alice B"},"remove_properties":["nickname"]}
{"op":"DELETE","type":"edge","id":"knows:abc123def456789b"}
`

func TestParseBatch(t *testing.T) {
	ops, err := ParseBatch(strings.NewReader(sampleBatch))
	require.NoError(t, err)
	require.Len(t, ops, 5)

	define, ok := ops[0].(*DefineOperation)
	require.True(t, ok)
	assert.Equal(t, "person", define.Label)
	assert.Equal(t, []string{"slug", "name"}, define.RequiredProperties)

	create, ok := ops[1].(*CreateNodeOperation)
	require.True(t, ok)
	assert.Equal(t, []string{"slug", "name", "data_source_id", "source_path"}, create.SetProperties.Keys())

	edge, ok := ops[2].(*CreateEdgeOperation)
	require.True(t, ok)
	assert.Equal(t, "person:abc123def456789c", edge.EndID)

	update, ok := ops[3].(*UpdateOperation)
	require.True(t, ok)
	assert.Equal(t, []string{"nickname"}, update.RemoveProperties)

	del, ok := ops[4].(*DeleteOperation)
	require.True(t, ok)
	assert.Equal(t, EntityEdge, del.EntityType)
}

func TestParseBatch_Empty(t *testing.T) {
	ops, err := ParseBatch(strings.NewReader("\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestParseBatch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantErr  string
	}{
		{
			name:     "malformed json on line 2",
			input:    `{"op":"DELETE","type":"node","id":"person:abc123def456789a"}` + "\n{not json}\n",
			wantLine: 2,
			wantErr:  "invalid operation",
		},
		{
			name:     "unknown field",
			input:    `{"op":"DELETE","type":"node","id":"person:abc123def456789a","cascade":true}`,
			wantLine: 1,
			wantErr:  `unknown field "cascade"`,
		},
		{
			name:     "blank lines count toward the line number",
			input:    "\n\n" + `{"op":"PATCH","type":"node","id":"person:abc123def456789a"}`,
			wantLine: 3,
			wantErr:  "op must be one of",
		},
		{
			name:     "define with id",
			input:    `{"op":"DEFINE","type":"node","id":"person:abc123def456789a","label":"person","description":"x"}`,
			wantLine: 1,
			wantErr:  "may not set id",
		},
		{
			name:     "define with set_properties",
			input:    `{"op":"DEFINE","type":"node","label":"person","description":"x","set_properties":{}}`,
			wantLine: 1,
			wantErr:  "may not set set_properties",
		},
		{
			name:     "delete with label",
			input:    `{"op":"DELETE","type":"node","id":"person:abc123def456789a","label":"person"}`,
			wantLine: 1,
			wantErr:  "may not set label",
		},
		{
			name:     "node create with endpoints",
			input:    `{"op":"CREATE","type":"node","id":"person:abc123def456789a","label":"person","start_id":"person:abc123def456789b","set_properties":{"data_source_id":"d","source_path":"p","slug":"s"}}`,
			wantLine: 1,
			wantErr:  "may not set start_id",
		},
		{
			name:     "update with description",
			input:    `{"op":"UPDATE","type":"node","id":"person:abc123def456789a","description":"x","set_properties":{"a":1}}`,
			wantLine: 1,
			wantErr:  "may not set description",
		},
		{
			name:     "bad entity type",
			input:    `{"op":"DELETE","type":"vertex","id":"person:abc123def456789a"}`,
			wantLine: 1,
			wantErr:  "type must be node or edge",
		},
		{
			name:     "invalid id pattern",
			input:    `{"op":"DELETE","type":"node","id":"person:XYZ"}`,
			wantLine: 1,
			wantErr:  "does not match",
		},
		{
			name:     "trailing data",
			input:    `{"op":"DELETE","type":"node","id":"person:abc123def456789a"} {"op":"DELETE"}`,
			wantLine: 1,
			wantErr:  "trailing data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch(strings.NewReader(tt.input))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestParseError_PreviewTruncated(t *testing.T) {
	line := `{"op":"CREATE","type":"node","label":"` + strings.Repeat("é", 200) + `"}`

	_, err := ParseBatch(strings.NewReader(line))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, strings.HasSuffix(pe.Preview, "..."))
	assert.Equal(t, previewRunes+3, len([]rune(pe.Preview)))
}

func TestParseError_ShortLineNotTruncated(t *testing.T) {
	_, err := ParseBatch(strings.NewReader(`{"op":1}`))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, `{"op":1}`, pe.Preview)
}
